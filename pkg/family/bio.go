package family

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	locationTag = "[LOCATION:"
	positionTag = "[POSITION:"
)

var (
	positionBodyRe = regexp.MustCompile(`^(-?\d+\.?\d*),(-?\d+\.?\d*)$`)
	bioEscaper     = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)
)

// BioFields holds the values decoded from a token-encoded bio.
type BioFields struct {
	Bio      string
	Location string
	Position *Position
}

// ExtractFromBio strips the trailing [LOCATION:...] and [POSITION:x,y]
// tokens from bio and returns them alongside the cleaned text. Either token
// may be absent. Tokens are only recognized at the end of the text, position
// last, and brackets escaped by [CombineToBio] are restored.
func ExtractFromBio(bio string) BioFields {
	var out BioFields
	working := strings.TrimSpace(bio)

	if rest, body, ok := trailingToken(working, positionTag); ok {
		if m := positionBodyRe.FindStringSubmatch(body); m != nil {
			x, errX := strconv.ParseFloat(m[1], 64)
			y, errY := strconv.ParseFloat(m[2], 64)
			if errX == nil && errY == nil {
				out.Position = &Position{X: x, Y: y}
				working = strings.TrimSpace(rest)
			}
		}
	}

	if rest, body, ok := trailingToken(working, locationTag); ok {
		out.Location = strings.TrimSpace(unescapeBio(body))
		working = strings.TrimSpace(rest)
	}

	out.Bio = unescapeBio(working)
	return out
}

// trailingToken reports whether s ends with an unescaped tag...] token that
// starts the text or follows whitespace. It returns the text before the token
// and the raw token body.
func trailingToken(s, tag string) (rest, body string, ok bool) {
	open, closing := -1, -1
	escaped := false
	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch s[i] {
		case '\\':
			escaped = true
		case '[':
			open = i
		case ']':
			closing = i
		}
	}
	if open < 0 || closing != len(s)-1 || closing < open {
		return s, "", false
	}
	if !strings.HasPrefix(s[open:], tag) {
		return s, "", false
	}
	if open > 0 && !strings.ContainsRune(" \t\r\n", rune(s[open-1])) {
		return s, "", false
	}
	return s[:open], s[open+len(tag) : closing], true
}

func escapeBio(s string) string {
	return bioEscaper.Replace(s)
}

// unescapeBio reverses escapeBio. Backslashes not followed by a bracket or
// another backslash are kept, so unescaped legacy text reads unchanged.
func unescapeBio(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\', '[', ']':
				b.WriteByte(s[i+1])
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// CombineToBio encodes location and position as tokens appended to bio.
// Empty locations and nil positions are omitted. Brackets and backslashes in
// bio and location are escaped with a backslash so the text can never be
// read back as a token.
func CombineToBio(bio, location string, pos *Position) string {
	result := escapeBio(strings.TrimSpace(bio))

	if loc := strings.TrimSpace(location); loc != "" {
		result = appendToken(result, locationTag+escapeBio(loc)+"]")
	}
	if pos != nil {
		result = appendToken(result, positionTag+formatCoord(pos.X)+","+formatCoord(pos.Y)+"]")
	}
	return result
}

func appendToken(text, token string) string {
	if text == "" {
		return token
	}
	return text + "\n\n" + token
}

// formatCoord renders the shortest decimal form without an exponent, which
// is what the position token pattern accepts.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DecodeMember fills Bio, Location and the position fields of m from its
// token-encoded bio.
func DecodeMember(m Member) Member {
	f := ExtractFromBio(m.Bio)
	m.Bio = f.Bio
	m.Location = f.Location
	if f.Position != nil {
		m = m.WithPosition(f.Position.X, f.Position.Y)
	} else {
		m = m.WithoutPosition()
	}
	return m
}

// EncodeBio is the inverse of DecodeMember: it folds Location and a custom
// position back into the bio text.
func EncodeBio(m Member) string {
	var pos *Position
	if m.HasCustomPosition() {
		pos = &Position{X: *m.PositionX, Y: *m.PositionY}
	}
	return CombineToBio(m.Bio, m.Location, pos)
}
