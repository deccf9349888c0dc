package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/store"
)

// testEnv writes a config that keeps every path inside a temp dir and
// returns it with the database path.
func testEnv(t *testing.T) (configPath, dbPath, cacheDir string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, k := range []string{"KINTREE_STORE_DRIVER", "KINTREE_STORE_DSN", "KINTREE_CACHE_DRIVER", "KINTREE_REDIS_ADDR", "SUPABASE_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	dbPath = filepath.Join(dir, "tree.db")
	cacheDir = filepath.Join(dir, "cache")
	configPath = filepath.Join(dir, "kintree.toml")
	cfg := `tree = "test"

[store]
driver = "sqlite"
dsn = "` + filepath.ToSlash(dbPath) + `"

[cache]
driver = "file"
dir = "` + filepath.ToSlash(cacheDir) + `"
`
	if err := os.WriteFile(configPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath, dbPath, cacheDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"layout", "render", "member", "move", "reset", "browse", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestCachePath(t *testing.T) {
	cfg, _, cacheDir := testEnv(t)

	out, err := execute(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.ToSlash(cacheDir) && got != cacheDir {
		t.Errorf("cache path = %q, want %q", got, cacheDir)
	}
}

func TestCacheClear(t *testing.T) {
	cfg, _, cacheDir := testEnv(t)

	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "layout:abc", []byte("{}"), cache.TTLLayout); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, hit, _ := fc.Get(ctx, "layout:abc"); hit {
		t.Error("entry survived cache clear")
	}
}

func TestMemberMoveAndLayout(t *testing.T) {
	cfg, dbPath, _ := testEnv(t)
	ctx := context.Background()

	if _, err := execute(t, "--config", cfg, "member", "add", "--name", "Ada", "--as", "alice"); err != nil {
		t.Fatalf("member add: %v", err)
	}

	s, err := store.Open(ctx, store.Options{Driver: store.DriverSQLite, DSN: dbPath})
	if err != nil {
		t.Fatal(err)
	}
	members, err := s.List(ctx)
	s.Close()
	if err != nil || len(members) != 1 {
		t.Fatalf("List = %v, %v; want one member", members, err)
	}
	id := members[0].ID
	if members[0].AddedBy != "alice" {
		t.Errorf("AddedBy = %q, want alice", members[0].AddedBy)
	}

	if _, err := execute(t, "--config", cfg, "move", id, "120", "-40", "--as", "bob"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := execute(t, "--config", cfg, "move", "nobody", "1", "2", "--as", "bob"); err == nil {
		t.Error("moving an unknown member should fail")
	}

	out := filepath.Join(t.TempDir(), "layout.json")
	if _, err := execute(t, "--config", cfg, "layout", "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.ReadLayoutFile(out)
	if err != nil {
		t.Fatal(err)
	}
	n, ok := l.Node(id)
	if !ok || !n.Custom || n.X != 120 || n.Y != -40 {
		t.Errorf("node = %+v, want pinned at (120,-40)", n)
	}

	if _, err := execute(t, "--config", cfg, "reset", "--as", "bob"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := execute(t, "--config", cfg, "layout", "-o", out, "--refresh"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, _ = graph.ReadLayoutFile(out)
	if n, _ := l.Node(id); n.Custom {
		t.Error("member still pinned after reset")
	}

	if _, err := execute(t, "--config", cfg, "member", "rm", id, "--as", "bob"); err == nil {
		t.Error("only the creator may remove a member")
	}
	if _, err := execute(t, "--config", cfg, "member", "rm", id, "--as", "alice"); err != nil {
		t.Fatalf("member rm: %v", err)
	}
}

func TestLayoutFromFile(t *testing.T) {
	cfg, _, _ := testEnv(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "smith.json")
	data := `{"members":[
		{"id":"a","name":"Arthur"},
		{"id":"b","name":"Beatrice","spouse_id":"a"},
		{"id":"c","name":"Carl","parent_id":"a","parent2_id":"b"}
	]}`
	if err := os.WriteFile(input, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "--config", cfg, "layout", input); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.ReadLayoutFile(filepath.Join(dir, "smith.layout.json"))
	if err != nil {
		t.Fatal(err)
	}
	if l.MemberCount() != 3 || len(l.Nodes) != 4 {
		t.Errorf("got %d members, %d nodes; want 3 members and one junction", l.MemberCount(), len(l.Nodes))
	}

	if _, err := execute(t, "--config", cfg, "render", "-f", "dot", filepath.Join(dir, "smith.layout.json")); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "smith.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(dot, []byte("digraph G {")) {
		t.Errorf("dot output starts with %q", dot[:min(len(dot), 20)])
	}
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "kintree") {
		t.Error("bash completion does not mention kintree")
	}
}
