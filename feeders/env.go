package feeders

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"
	"github.com/golobby/config/v3/pkg/feeder"
)

// EnvFeeder reads the environment variables named by `env` tags.
type EnvFeeder = feeder.Env

// NewEnvFeeder returns an EnvFeeder.
func NewEnvFeeder() EnvFeeder {
	return EnvFeeder{}
}

// AffixedEnvFeeder reads environment variables named by `env` tags with a
// prefix and/or suffix joined by underscores, so several applications can
// configure documents in one environment: with Prefix "EDITOR" the tag
// PROJECTS_CODEC is read from EDITOR_PROJECTS_CODEC.
type AffixedEnvFeeder struct {
	Prefix string
	Suffix string
}

// NewAffixedEnvFeeder returns an AffixedEnvFeeder.
func NewAffixedEnvFeeder(prefix, suffix string) AffixedEnvFeeder {
	return AffixedEnvFeeder{Prefix: prefix, Suffix: suffix}
}

// Feed fills the struct pointed to by target.
func (f AffixedEnvFeeder) Feed(target any) error {
	if f.Prefix == "" && f.Suffix == "" {
		return ErrEnvEmptyPrefixAndSuffix
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrEnvInvalidStructure
	}
	return f.fillStruct(rv.Elem())
}

func (f AffixedEnvFeeder) fillStruct(rv reflect.Value) error {
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rv.Type().Field(i)
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.Struct:
			if err := f.fillStruct(field); err != nil {
				return err
			}
			continue
		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				if err := f.fillStruct(field.Elem()); err != nil {
					return err
				}
			}
			continue
		}

		envTag, ok := fieldType.Tag.Lookup("env")
		if !ok || envTag == "" {
			continue
		}
		value, ok := os.LookupEnv(f.name(envTag))
		if !ok || value == "" {
			continue
		}
		if err := setField(field, value); err != nil {
			return fmt.Errorf("error in field '%s': %w", fieldType.Name, err)
		}
	}
	return nil
}

func (f AffixedEnvFeeder) name(tag string) string {
	parts := make([]string, 0, 3)
	if f.Prefix != "" {
		parts = append(parts, strings.ToUpper(f.Prefix))
	}
	parts = append(parts, strings.ToUpper(tag))
	if f.Suffix != "" {
		parts = append(parts, strings.ToUpper(f.Suffix))
	}
	return strings.Join(parts, "_")
}

var durationType = reflect.TypeOf(time.Duration(0))

func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %v: %w", ErrEnvCannotConvert, field.Type(), err)
		}
		field.SetInt(int64(d))
		return nil
	}
	converted, err := cast.FromType(value, field.Type())
	if err != nil {
		return fmt.Errorf("%w: %v: %w", ErrEnvCannotConvert, field.Type(), err)
	}
	cv := reflect.ValueOf(converted)
	if !cv.Type().ConvertibleTo(field.Type()) {
		return fmt.Errorf("%w: %v", ErrEnvCannotConvert, field.Type())
	}
	field.Set(cv.Convert(field.Type()))
	return nil
}
