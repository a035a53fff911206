// Package config loads struct-tagged configuration from environment variables
// and, optionally, a YAML file.
//
// Supported struct tags:
//
//	env:"NAME"        environment variable to read
//	default:"value"   applied when the field is still zero after loading
//	required:"true"   loading fails when the field is zero and has no default
//
// Nested structs are walked recursively.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Validator is implemented by config structs that need checks beyond required/default tags.
type Validator interface {
	Validate() error
}

// GetConfigFromEnvVars loads configuration from environment variables only.
//
//	var cfg MyConfig
//	err := GetConfigFromEnvVars(&cfg)
func GetConfigFromEnvVars[T any](dest *T) error {
	val := reflect.ValueOf(dest).Elem()

	setFields, err := applyEnv(val)
	if err != nil {
		return err
	}

	if err := applyDefaultsAndRequired(val, setFields); err != nil {
		var zero T
		*dest = zero
		return err
	}

	return validate(dest)
}

// GetConfig loads configuration from a YAML file first, then overlays environment variables.
// ${VAR} references in the file are expanded from the environment before parsing.
// An empty path means environment only. With allowFileErrors, an unreadable or
// malformed file falls back to environment only.
func GetConfig[T any](dest *T, path string, allowFileErrors bool) error {
	if path == "" {
		return GetConfigFromEnvVars(dest)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), dest); err != nil {
		if allowFileErrors {
			var zero T
			*dest = zero
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return GetConfigFromEnvVars(dest)
}

func validate[T any](dest *T) error {
	// *T carries both pointer and value receiver methods
	if v, ok := any(dest).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

// applyEnv copies tagged environment variables into val and reports which fields were set.
func applyEnv(val reflect.Value) (map[string]bool, error) {
	setFields := make(map[string]bool)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if !fieldType.IsExported() {
			continue
		}

		if field.Kind() == reflect.Struct {
			nested, err := applyEnv(field)
			if err != nil {
				return nil, err
			}
			for k := range nested {
				setFields[k] = true
			}
			continue
		}

		tag := fieldType.Tag.Get("env")
		if tag == "" {
			continue
		}
		envVal, ok := os.LookupEnv(tag)
		if !ok || envVal == "" {
			continue
		}

		if err := setValue(field, envVal); err != nil {
			return nil, fmt.Errorf("env %s: %w", tag, err)
		}
		setFields[fieldKey(typ, fieldType)] = true
	}

	return setFields, nil
}

func applyDefaultsAndRequired(val reflect.Value, setFields map[string]bool) error {
	var result error
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if !fieldType.IsExported() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := applyDefaultsAndRequired(field, setFields); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}

		defaultTag, hasDefault := fieldType.Tag.Lookup("default")
		required := isTrue(fieldType.Tag.Get("required")) && !hasDefault

		if !field.IsZero() {
			continue
		}

		if required {
			result = multierror.Append(result, fmt.Errorf("required field env:%s / yaml:%s is missing",
				fieldType.Tag.Get("env"), fieldType.Tag.Get("yaml")))
			continue
		}

		if hasDefault && defaultTag != "" && !setFields[fieldKey(typ, fieldType)] {
			if err := setValue(field, defaultTag); err != nil {
				result = multierror.Append(result, fmt.Errorf("default for %s: %w", fieldType.Name, err))
			}
		}
	}

	return result
}

// setValue parses raw into field according to the field's kind.
func setValue(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to duration: %w", raw, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to convert %s to int: %w", raw, err)
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to convert %s to float: %w", raw, err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to bool: %w", raw, err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		parts := strings.Split(raw, ",")
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			slice.Index(i).SetString(strings.TrimSpace(p))
		}
		field.Set(slice)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

// fieldKey is struct type + field name so equally named fields in different structs don't collide.
func fieldKey(parent reflect.Type, field reflect.StructField) string {
	return parent.Name() + "." + field.Name
}

func isTrue(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1"
}
