package projects

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/projects/codec"
)

// PropertyStore is a name-keyed value store that notifies handlers when a
// value changes. The zero value is empty and ready to use. A PropertyStore
// must not be copied after first use; copies share the same table.
//
// Stores serialize as a name to value map with every supported codec, so
// documents keep their properties whichever format they are saved in.
type PropertyStore struct {
	table *propertyTable
}

type propertyTable struct {
	mu       sync.RWMutex
	values   map[string]any
	sender   any
	handlers handlerList[PropertyChangedHandler]
}

func (s *PropertyStore) ensure() *propertyTable {
	if s.table == nil {
		s.table = &propertyTable{values: make(map[string]any)}
	}
	return s.table
}

// Value returns the raw stored value and whether name is present.
func (s *PropertyStore) Value(name string) (any, bool) {
	if s.table == nil {
		return nil, false
	}
	s.table.mu.RLock()
	defer s.table.mu.RUnlock()
	v, ok := s.table.values[name]
	return v, ok
}

// Has reports whether a value is stored under name.
func (s *PropertyStore) Has(name string) bool {
	_, ok := s.Value(name)
	return ok
}

// Set stores value under name. It returns false, without notifying, when the
// stored value already equals value. Equality is structural, so values of
// different types are never equal.
func (s *PropertyStore) Set(name string, value any) bool {
	t := s.ensure()

	t.mu.Lock()
	old, exists := t.values[name]
	if exists && reflect.DeepEqual(old, value) {
		t.mu.Unlock()
		return false
	}
	if !exists && value == nil {
		// An absent property already reads as nil.
		t.mu.Unlock()
		return false
	}
	t.values[name] = value
	sender := t.senderLocked(s)
	t.mu.Unlock()

	for _, h := range t.handlers.snapshot() {
		h(sender, name)
	}
	return true
}

// Remove deletes name and notifies handlers if it was present.
func (s *PropertyStore) Remove(name string) bool {
	if s.table == nil {
		return false
	}
	t := s.table
	t.mu.Lock()
	if _, ok := t.values[name]; !ok {
		t.mu.Unlock()
		return false
	}
	delete(t.values, name)
	sender := t.senderLocked(s)
	t.mu.Unlock()

	for _, h := range t.handlers.snapshot() {
		h(sender, name)
	}
	return true
}

// Names returns the stored property names in sorted order.
func (s *PropertyStore) Names() []string {
	if s.table == nil {
		return nil
	}
	s.table.mu.RLock()
	names := make([]string, 0, len(s.table.values))
	for name := range s.table.values {
		names = append(names, name)
	}
	s.table.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of stored properties.
func (s *PropertyStore) Len() int {
	if s.table == nil {
		return 0
	}
	s.table.mu.RLock()
	defer s.table.mu.RUnlock()
	return len(s.table.values)
}

// Snapshot returns a shallow copy of the stored values.
func (s PropertyStore) Snapshot() map[string]any {
	out := make(map[string]any)
	if s.table == nil {
		return out
	}
	s.table.mu.RLock()
	defer s.table.mu.RUnlock()
	for name, v := range s.table.values {
		out[name] = v
	}
	return out
}

// OnPropertyChanged registers h for value changes.
func (s *PropertyStore) OnPropertyChanged(h PropertyChangedHandler) Unsubscribe {
	return s.ensure().handlers.add(h)
}

// NotifyPropertyChanged invokes the handlers for name without changing any
// value. Use it for derived properties that are not stored here.
func (s *PropertyStore) NotifyPropertyChanged(name string) {
	t := s.ensure()
	t.mu.RLock()
	sender := t.senderLocked(s)
	t.mu.RUnlock()
	for _, h := range t.handlers.snapshot() {
		h(sender, name)
	}
}

// SetSender sets the object reported to handlers. By default the store
// reports itself.
func (s *PropertyStore) SetSender(sender any) {
	t := s.ensure()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sender = sender
}

func (t *propertyTable) senderLocked(s *PropertyStore) any {
	if t.sender != nil {
		return t.sender
	}
	return s
}

// replace swaps in decoded values without notifying handlers.
func (s *PropertyStore) replace(values map[string]any) {
	t := s.ensure()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = make(map[string]any, len(values))
	for name, v := range values {
		t.values[name] = v
	}
}

// Get returns the value stored under name converted to T, or T's zero value
// when there is none.
func Get[T any](s *PropertyStore, name string) (T, error) {
	var zero T
	return GetOrDefault(s, name, zero)
}

// GetOrDefault returns the value stored under name converted to T, or def
// when there is none or it is nil. Strings are parsed into T and numbers are
// converted between numeric types when no precision is lost. Any other
// mismatch is ErrPropertyType.
func GetOrDefault[T any](s *PropertyStore, name string, def T) (T, error) {
	v, ok := s.Value(name)
	if !ok || v == nil {
		return def, nil
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	target := reflect.TypeOf((*T)(nil)).Elem()
	if converted, ok := convertValue(v, target); ok {
		if typed, ok := converted.(T); ok {
			return typed, nil
		}
	}
	return def, fmt.Errorf("%w: %q holds %T, want %v", ErrPropertyType, name, v, target)
}

// MustGetOrDefault is GetOrDefault for callers that treat a type mismatch as
// a programming error.
func MustGetOrDefault[T any](s *PropertyStore, name string, def T) T {
	v, err := GetOrDefault(s, name, def)
	if err != nil {
		panic(err)
	}
	return v
}

// convertValue converts v to target. Interface targets accept anything
// assignable; strings go through cast; numbers convert only when the round
// trip is exact.
func convertValue(v any, target reflect.Type) (any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Type() == target {
		return v, true
	}
	if target.Kind() == reflect.Interface {
		if rv.Type().Implements(target) {
			return v, true
		}
		return nil, false
	}

	if str, ok := v.(string); ok {
		if target == reflect.TypeOf(time.Time{}) {
			parsed, err := time.Parse(time.RFC3339Nano, str)
			if err != nil {
				return nil, false
			}
			return parsed, true
		}
		parsed, err := cast.FromType(str, target)
		if err != nil || parsed == nil {
			return nil, false
		}
		pv := reflect.ValueOf(parsed)
		if pv.Type() == target {
			return parsed, true
		}
		if pv.Type().ConvertibleTo(target) {
			return pv.Convert(target).Interface(), true
		}
		return nil, false
	}

	if isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		converted := rv.Convert(target)
		if converted.Convert(rv.Type()).Interface() != rv.Interface() {
			return nil, false
		}
		return converted.Interface(), true
	}

	if rv.Kind() == target.Kind() && rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface(), true
	}
	return nil, false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// xmlProperty is the XML form of one property. Type records the Go kind of
// scalar values so they come back typed; anything else is stored as JSON.
type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

type xmlProperties struct {
	Items []xmlProperty `xml:"property"`
}

const (
	xmlTypeTime = "time"
	xmlTypeJSON = "json"
)

var xmlScalarTypes = map[string]reflect.Type{
	"bool":    reflect.TypeOf(false),
	"int":     reflect.TypeOf(int(0)),
	"int8":    reflect.TypeOf(int8(0)),
	"int16":   reflect.TypeOf(int16(0)),
	"int32":   reflect.TypeOf(int32(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"uint":    reflect.TypeOf(uint(0)),
	"uint8":   reflect.TypeOf(uint8(0)),
	"uint16":  reflect.TypeOf(uint16(0)),
	"uint32":  reflect.TypeOf(uint32(0)),
	"uint64":  reflect.TypeOf(uint64(0)),
	"float32": reflect.TypeOf(float32(0)),
	"float64": reflect.TypeOf(float64(0)),
}

// MarshalXML writes each property as <property name="..">value</property>.
func (s PropertyStore) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	values := s.Snapshot()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := xmlProperties{Items: make([]xmlProperty, 0, len(names))}
	for _, name := range names {
		v := values[name]
		if v == nil {
			continue
		}
		item, err := toXMLProperty(name, v)
		if err != nil {
			return err
		}
		out.Items = append(out.Items, item)
	}
	return e.EncodeElement(out, start)
}

func toXMLProperty(name string, v any) (xmlProperty, error) {
	switch typed := v.(type) {
	case string:
		return xmlProperty{Name: name, Value: typed}, nil
	case time.Time:
		return xmlProperty{Name: name, Type: xmlTypeTime, Value: typed.Format(time.RFC3339Nano)}, nil
	}
	kind := reflect.TypeOf(v).Kind().String()
	if scalar, ok := xmlScalarTypes[kind]; ok && reflect.TypeOf(v) == scalar {
		return xmlProperty{Name: name, Type: kind, Value: fmt.Sprint(v)}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return xmlProperty{}, fmt.Errorf("encode property %q: %w", name, err)
	}
	return xmlProperty{Name: name, Type: xmlTypeJSON, Value: string(data)}, nil
}

// UnmarshalXML replaces the store's values without notifying handlers.
func (s *PropertyStore) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var in xmlProperties
	if err := d.DecodeElement(&in, &start); err != nil {
		return err
	}
	values := make(map[string]any, len(in.Items))
	for _, item := range in.Items {
		v, err := fromXMLProperty(item)
		if err != nil {
			return err
		}
		values[item.Name] = v
	}
	s.replace(values)
	return nil
}

func fromXMLProperty(item xmlProperty) (any, error) {
	switch item.Type {
	case "":
		return item.Value, nil
	case xmlTypeTime:
		t, err := time.Parse(time.RFC3339Nano, item.Value)
		if err != nil {
			return nil, fmt.Errorf("decode property %q: %w", item.Name, err)
		}
		return t, nil
	case xmlTypeJSON:
		var v any
		if err := json.Unmarshal([]byte(item.Value), &v); err != nil {
			return nil, fmt.Errorf("decode property %q: %w", item.Name, err)
		}
		return v, nil
	}
	target, ok := xmlScalarTypes[item.Type]
	if !ok {
		// Unknown type names keep the raw text.
		return item.Value, nil
	}
	v, err := cast.FromType(item.Value, target)
	if err != nil {
		return nil, fmt.Errorf("decode property %q as %s: %w", item.Name, item.Type, err)
	}
	return v, nil
}

// MarshalJSON encodes the store as an object.
func (s PropertyStore) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON replaces the store's values without notifying handlers.
func (s *PropertyStore) UnmarshalJSON(data []byte) error {
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	s.replace(values)
	return nil
}

// MarshalYAML encodes the store as a mapping.
func (s PropertyStore) MarshalYAML() (any, error) {
	return s.Snapshot(), nil
}

// UnmarshalYAML replaces the store's values without notifying handlers.
func (s *PropertyStore) UnmarshalYAML(node *yaml.Node) error {
	var values map[string]any
	if err := node.Decode(&values); err != nil {
		return err
	}
	s.replace(values)
	return nil
}

// MarshalCBOR encodes the store as a deterministic CBOR map.
func (s PropertyStore) MarshalCBOR() ([]byte, error) {
	return codec.CBOREncMode().Marshal(s.Snapshot())
}

// UnmarshalCBOR replaces the store's values without notifying handlers.
func (s *PropertyStore) UnmarshalCBOR(data []byte) error {
	var values map[string]any
	if err := codec.CBORDecMode().Unmarshal(data, &values); err != nil {
		return err
	}
	s.replace(values)
	return nil
}
