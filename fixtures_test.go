package projects

import (
	"encoding/xml"
	"fmt"
	"sync"
)

// testPerson is a child entity whose state lives in its property store.
type testPerson struct {
	Entity `yaml:",inline"`
}

func (p *testPerson) Name() string {
	return MustGetOrDefault(&p.Properties, "Name", "")
}

func (p *testPerson) SetName(name string) { p.SetProperty("Name", name) }

func (p *testPerson) Age() int {
	return MustGetOrDefault(&p.Properties, "Age", 0)
}

func (p *testPerson) SetAge(age int) { p.SetProperty("Age", age) }

func (p *testPerson) Gender() string {
	return MustGetOrDefault(&p.Properties, "Gender", "")
}

func (p *testPerson) SetGender(gender string) { p.SetProperty("Gender", gender) }

// testProject is a document holding one person.
type testProject struct {
	Document `yaml:",inline"`
	XMLName  xml.Name    `xml:"testproject" json:"-" yaml:"-" cbor:"-"`
	Person   *testPerson `xml:"person" json:"person" yaml:"person" cbor:"person"`

	initCalls int
}

func (p *testProject) InitDocument() error {
	p.initCalls++
	if p.Person == nil {
		p.Person = &testPerson{}
	}
	p.Person.SetSender(p.Person)
	p.Track(p.Person)
	return nil
}

// plainProject has no children and no init hook.
type plainProject struct {
	Document `yaml:",inline"`
	XMLName  xml.Name `xml:"plainproject" json:"-" yaml:"-" cbor:"-"`
	Title    string   `xml:"title" json:"title" yaml:"title" cbor:"title"`
}

// logEntry is one call recorded by recordingLogger.
type logEntry struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, fmt.Sprintf("%s %v", e.msg, e.args))
		}
	}
	return out
}
