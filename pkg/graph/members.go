package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// membersFile is the object form of a members file.
type membersFile struct {
	Members []family.Member `json:"members"`
}

// =============================================================================
// Members Serialization API
// =============================================================================

// MarshalMembers converts members to indented JSON in object form.
// The output depends only on the members and their order, so it is used as
// the input to cache keys.
func MarshalMembers(members []family.Member) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteMembers(members, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteMembers writes members as JSON to an io.Writer.
func WriteMembers(members []family.Member, w io.Writer) error {
	if members == nil {
		members = []family.Member{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(membersFile{Members: members}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteMembersFile writes members to a JSON file.
// The file is created with 0644 permissions.
func WriteMembersFile(members []family.Member, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteMembers(members, f)
}

// ReadMembers decodes members from either a bare JSON array or an object
// with a "members" key. Relationship references are normalized.
func ReadMembers(r io.Reader) ([]family.Member, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)

	var members []family.Member
	switch {
	case len(data) == 0:
		return nil, kerrors.New(kerrors.ErrCodeInvalidFormat, "empty members file")
	case data[0] == '[':
		err = json.Unmarshal(data, &members)
	default:
		var f membersFile
		err = json.Unmarshal(data, &f)
		members = f.Members
	}
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode members")
	}

	seen := make(map[string]bool, len(members))
	for i, m := range members {
		m = family.Normalize(m)
		if m.ID == "" {
			return nil, kerrors.New(kerrors.ErrCodeInvalidFormat, "member %d has no id", i)
		}
		if seen[m.ID] {
			return nil, kerrors.New(kerrors.ErrCodeInvalidFormat, "duplicate member id %s", m.ID)
		}
		seen[m.ID] = true
		members[i] = m
	}
	return members, nil
}

// ReadMembersFile reads members from a JSON file.
func ReadMembersFile(path string) ([]family.Member, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadMembers(f)
}
