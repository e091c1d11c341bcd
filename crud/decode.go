package crud

import (
	"github.com/mitchellh/mapstructure"
)

// DecodeRecord decodes a wire-name keyed field map into an entity struct.
// Input is weakly typed: JSON numbers land in integer columns, RFC3339
// strings in time fields.
func DecodeRecord(fields map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(fields); err != nil {
		return ValidationErrorf("payload does not fit entity shape: %v", err)
	}
	return nil
}
