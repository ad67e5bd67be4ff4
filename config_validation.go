package projects

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/golobby/cast"
	"gopkg.in/yaml.v3"
)

const tagDefault = "default"

// ConfigValidator is implemented by config structs with checks that struct
// tags cannot express. ValidateConfig calls it after tag validation.
type ConfigValidator interface {
	Validate() error
}

// validate is shared by every ValidateConfig call; it caches struct metadata.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// ProcessConfigDefaults sets every zero field that carries a `default:"..."`
// tag. Nested structs, and non-nil pointers to structs, are processed too.
//
//	type Config struct {
//	    Prefix   string        `default:"projects"`
//	    Debounce time.Duration `default:"100ms"`
//	}
func ProcessConfigDefaults(cfg any) error {
	if cfg == nil {
		return ErrConfigNil
	}
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrConfigNotPointer
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrConfigNotStruct
	}
	return processStructDefaults(v)
}

func processStructDefaults(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := processStructDefaults(field); err != nil {
				return err
			}
			continue
		}
		if field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct {
			if !field.IsNil() {
				if err := processStructDefaults(field.Elem()); err != nil {
					return err
				}
			}
			continue
		}

		defaultVal, hasDefault := fieldType.Tag.Lookup(tagDefault)
		if !hasDefault || !field.IsZero() {
			continue
		}
		if err := setDefaultValue(field, defaultVal); err != nil {
			return fmt.Errorf("failed to set default value for %s: %w", fieldType.Name, err)
		}
	}
	return nil
}

func setDefaultValue(field reflect.Value, defaultVal string) error {
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(defaultVal)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.Slice:
		return setDefaultSlice(field, defaultVal)
	case reflect.Invalid, reflect.Complex64, reflect.Complex128, reflect.Array,
		reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr,
		reflect.Struct, reflect.UnsafePointer:
		return fmt.Errorf("%w: %s", ErrUnsupportedTypeForDefault, field.Kind())
	}

	converted, err := cast.FromType(defaultVal, field.Type())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
	}
	cv := reflect.ValueOf(converted)
	if !cv.Type().ConvertibleTo(field.Type()) {
		return fmt.Errorf("%w: %s", ErrUnsupportedTypeForDefault, field.Type())
	}
	field.Set(cv.Convert(field.Type()))
	return nil
}

// setDefaultSlice splits a comma separated default.
func setDefaultSlice(field reflect.Value, defaultVal string) error {
	parts := strings.Split(defaultVal, ",")
	slice := reflect.MakeSlice(field.Type(), 0, len(parts))
	for _, part := range parts {
		converted, err := cast.FromType(strings.TrimSpace(part), field.Type().Elem())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
		}
		slice = reflect.Append(slice, reflect.ValueOf(converted).Convert(field.Type().Elem()))
	}
	field.Set(slice)
	return nil
}

// ValidateConfig applies defaults, checks `validate` tags and finally calls
// Validate when cfg implements ConfigValidator.
func ValidateConfig(cfg any) error {
	if cfg == nil {
		return ErrConfigNil
	}
	if err := ProcessConfigDefaults(cfg); err != nil {
		return err
	}

	if err := validate.Struct(cfg); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]string, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrConfigValidationFailed, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %w", ErrConfigValidationFailed, err)
	}

	if v, ok := cfg.(ConfigValidator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigValidationFailed, err)
		}
	}
	return nil
}

// GenerateSampleConfig renders cfg, with defaults applied, as yaml, toml or
// json.
func GenerateSampleConfig(cfg any, format string) ([]byte, error) {
	if err := ProcessConfigDefaults(cfg); err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	case "toml":
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return []byte(b.String()), nil
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported sample config format %q", format)
	}
}

// SaveSampleConfig writes GenerateSampleConfig output to filePath.
func SaveSampleConfig(cfg any, format, filePath string) error {
	data, err := GenerateSampleConfig(cfg, format)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}
