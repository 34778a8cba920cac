package config

import (
	"reflect"

	"github.com/tkuchel/codex-operations-go/commonerrors"
)

// ValidateEmbedded uses reflection to find embedded structs implementing
// IServiceConfiguration and validates them.
func ValidateEmbedded(cfg IServiceConfiguration) error {
	r := reflect.ValueOf(cfg)
	if r.Kind() != reflect.Ptr || r.IsNil() {
		return commonerrors.New(commonerrors.ErrInvalid, "configuration must be a non-nil pointer")
	}
	r = r.Elem()
	for i := 0; i < r.NumField(); i++ {
		f := r.Field(i)
		if f.Kind() != reflect.Struct {
			continue
		}
		validator, ok := f.Addr().Interface().(IServiceConfiguration)
		if !ok {
			continue
		}
		if err := validator.Validate(); err != nil {
			return commonerrors.WrapError(commonerrors.ErrInvalid, err, r.Type().Field(i).Name)
		}
	}
	return nil
}
