package journal

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var log = logrus.WithField("component", "journal")

// Note is one markdown journal file with parsed YAML frontmatter.
type Note struct {
	Path string
	Meta map[string]any
	Body string
}

// ParseFrontmatter extracts the YAML frontmatter block from markdown
// content. Content without a valid block yields an empty map.
func ParseFrontmatter(content string) map[string]any {
	if !strings.HasPrefix(content, "---") {
		return map[string]any{}
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return map[string]any{}
	}

	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(parts[1]), &meta); err != nil {
		return map[string]any{}
	}
	return meta
}

// MetaDate reads a date field from frontmatter as YYYY-MM-DD. YAML
// decodes bare dates into time.Time, so both shapes are handled.
func MetaDate(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return ""
	}
}

// MetaString reads a plain string field from frontmatter.
func MetaString(meta map[string]any, key string) string {
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

// ListNotes loads all notes under dir whose filename ends in suffix
// (e.g. "_daily.md"), sorted by filename. A missing directory is an
// empty journal, not an error.
func ListNotes(dir, suffix string) ([]Note, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal directory: %w", err)
	}

	names := make([]string, 0)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	notes := make([]Note, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read note %s: %w", name, err)
		}
		content := string(data)
		notes = append(notes, Note{
			Path: path,
			Meta: ParseFrontmatter(content),
			Body: content,
		})
	}
	return notes, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeNote serializes frontmatter and body into a markdown file.
// Existing files are never overwritten.
func writeNote(path string, frontmatter any, body string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("note %s already exists: %w", filepath.Base(path), fs.ErrExist)
	}

	fm, err := yaml.Marshal(frontmatter)
	if err != nil {
		return fmt.Errorf("marshal frontmatter: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}

	content := fmt.Sprintf("---\n%s---\n\n%s", fm, body)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	return nil
}

// dailyFrontmatter is the frontmatter schema of a daily note.
type dailyFrontmatter struct {
	Date  string   `yaml:"date"`
	Tags  []string `yaml:"tags,flow"`
	Facts []string `yaml:"facts,flow"`
}

// WriteDaily stores a daily journal note for date (YYYY-MM-DD) and
// returns its path.
func WriteDaily(dir, date, narrative string, facts []string) (string, error) {
	if facts == nil {
		facts = []string{}
	}
	path := filepath.Join(dir, date+"_daily.md")

	fm := dailyFrontmatter{
		Date:  date,
		Tags:  []string{"daily", "recollect"},
		Facts: facts,
	}
	body := fmt.Sprintf("# Daily Log: %s\n\n%s\n", date, narrative)

	if err := writeNote(path, fm, body); err != nil {
		return "", err
	}
	log.WithField("path", path).Info("saved daily journal")
	return path, nil
}
