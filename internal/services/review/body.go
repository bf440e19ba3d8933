package review

import (
	"strings"
)

// FilesSection holds the attachment metadata block. It is always rendered last.
const FilesSection = "Files"

type Field struct {
	Name  string
	Value string
}

// Body is the structured text of a review message.
type Body struct {
	Title       string
	Description []string
	Fields      []Field
	Footer      string
}

func (b *Body) Field(name string) (string, bool) {
	for _, f := range b.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (b *Body) SetField(name, value string) {
	for i := range b.Fields {
		if b.Fields[i].Name == name {
			b.Fields[i].Value = value
			return
		}
	}
	b.Fields = append(b.Fields, Field{Name: name, Value: value})
}

func (b *Body) String() string {
	var sb strings.Builder
	sb.WriteString(defuse(oneLine(b.Title)))
	sb.WriteByte('\n')
	for _, line := range b.Description {
		sb.WriteString(defuse(oneLine(line)))
		sb.WriteByte('\n')
	}
	for _, f := range b.Fields {
		sb.WriteByte('\n')
		sb.WriteString(header(f.Name))
		sb.WriteByte('\n')
		sb.WriteString(defuse(f.Value))
		sb.WriteByte('\n')
	}
	if b.Footer != "" {
		sb.WriteByte('\n')
		sb.WriteString(header(FilesSection))
		sb.WriteByte('\n')
		sb.WriteString(b.Footer)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ParseBody splits rendered text back into its sections. It never fails; missing
// sections are simply absent.
func ParseBody(text string) *Body {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	b := &Body{}
	if len(lines) == 0 {
		return b
	}
	b.Title = strings.TrimSpace(lines[0])

	var (
		current string
		inField bool
		buf     []string
	)
	flush := func() {
		if !inField {
			return
		}
		value := strings.Trim(strings.Join(buf, "\n"), "\n")
		if current == FilesSection {
			b.Footer = value
		} else {
			b.Fields = append(b.Fields, Field{Name: current, Value: value})
		}
		buf = nil
	}

	for _, line := range lines[1:] {
		if name, ok := parseHeader(line); ok {
			flush()
			current, inField = name, true
			continue
		}
		if !inField {
			if strings.TrimSpace(line) != "" {
				b.Description = append(b.Description, strings.TrimSpace(line))
			}
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return b
}

func header(name string) string {
	return "== " + name + " =="
}

func parseHeader(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if len(line) < 7 || !strings.HasPrefix(line, "== ") || !strings.HasSuffix(line, " ==") {
		return "", false
	}
	name := strings.TrimSpace(line[3 : len(line)-3])
	return name, name != ""
}

// defuse keeps user text from being read back as a section header.
func defuse(value string) string {
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		if _, ok := parseHeader(line); ok {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
