package coding

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var errHexColor = validation.NewError("validation_hex_color", "must be a hex color like #3B82F6")

type hexColorRule struct{}

// HexColor accepts #RGB and #RRGGBB. Empty values pass; combine with Required where needed.
// Client and server validate code colors with this one rule.
var HexColor validation.Rule = hexColorRule{}

func (hexColorRule) Validate(value interface{}) error {
	value, isNil := validation.Indirect(value)
	if isNil || validation.IsEmpty(value) {
		return nil
	}
	s, ok := value.(string)
	if !ok || !strings.HasPrefix(s, "#") || is.HexColor.Validate(s) != nil {
		return errHexColor
	}
	return nil
}
