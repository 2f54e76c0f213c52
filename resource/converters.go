package resource

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/podhmo/go-observe/object"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RegisterBuiltins adds the built-in converters and behaviors to r.
func RegisterBuiltins(r *Registry) {
	r.RegisterConverter("number", NumberConverter{})
	r.RegisterConverter("percent", PercentConverter{})
	r.RegisterConverter("currency", CurrencyConverter{})
	r.RegisterConverter("upper", UpperConverter{})
	r.RegisterConverter("lower", LowerConverter{})
	r.RegisterConverter("json", JSONConverter{})
	r.RegisterBehavior("throttle", ThrottleBehavior{})
	r.RegisterBehavior("oneTime", OneTimeBehavior{})
	r.RegisterBehavior("signal", SignalBehavior{})
}

func localeArg(args []object.Object, i int) (language.Tag, error) {
	locale := "en"
	if v := object.Arg(args, i); !object.IsNullish(v) {
		locale = object.ToString(v)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return tag, nil
}

// parseLocalized reads a number formatted with grouping separators.
func parseLocalized(val object.Object) object.Object {
	if object.IsNullish(val) {
		return val
	}
	s := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', ' ', '_':
			return -1
		}
		return r
	}, strings.TrimSpace(object.ToString(val)))
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return object.Number(object.ToNumber(object.String(s)))
	}
	return object.Number(f)
}

// NumberConverter formats numbers for a locale: `amount | number:'de':2`
// (locale, maximum fraction digits). Written-back text is parsed again.
type NumberConverter struct{}

// ToView formats val.
func (NumberConverter) ToView(val object.Object, args []object.Object) (object.Object, error) {
	if object.IsNullish(val) {
		return object.String(""), nil
	}
	tag, err := localeArg(args, 0)
	if err != nil {
		return nil, err
	}
	var opts []number.Option
	if d := object.Arg(args, 1); !object.IsNullish(d) {
		opts = append(opts, number.MaxFractionDigits(int(object.ToNumber(d))))
	}
	p := message.NewPrinter(tag)
	return object.String(p.Sprintf("%v", number.Decimal(object.ToNumber(val), opts...))), nil
}

// FromView parses a formatted number.
func (NumberConverter) FromView(val object.Object, _ []object.Object) (object.Object, error) {
	return parseLocalized(val), nil
}

// PercentConverter formats a ratio as a percentage: `ratio | percent:'en'`.
type PercentConverter struct{}

// ToView formats val.
func (PercentConverter) ToView(val object.Object, args []object.Object) (object.Object, error) {
	if object.IsNullish(val) {
		return object.String(""), nil
	}
	tag, err := localeArg(args, 0)
	if err != nil {
		return nil, err
	}
	p := message.NewPrinter(tag)
	return object.String(p.Sprintf("%v", number.Percent(object.ToNumber(val)))), nil
}

// FromView parses a percentage back into a ratio.
func (PercentConverter) FromView(val object.Object, _ []object.Object) (object.Object, error) {
	n := parseLocalized(val)
	if f, ok := n.(object.Number); ok {
		return f / 100, nil
	}
	return n, nil
}

// CurrencyConverter formats an amount with a currency symbol:
// `price | currency:'EUR':'fr'` (ISO code, locale).
type CurrencyConverter struct{}

// ToView formats val.
func (CurrencyConverter) ToView(val object.Object, args []object.Object) (object.Object, error) {
	if object.IsNullish(val) {
		return object.String(""), nil
	}
	code := "USD"
	if v := object.Arg(args, 0); !object.IsNullish(v) {
		code = object.ToString(v)
	}
	cur, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency code %q: %w", code, err)
	}
	tag, err := localeArg(args, 1)
	if err != nil {
		return nil, err
	}
	p := message.NewPrinter(tag)
	return object.String(p.Sprintf("%v", currency.Symbol(cur.Amount(object.ToNumber(val))))), nil
}

// UpperConverter upper-cases text for a locale: `name | upper`.
type UpperConverter struct{}

// ToView upper-cases val.
func (UpperConverter) ToView(val object.Object, args []object.Object) (object.Object, error) {
	if object.IsNullish(val) {
		return val, nil
	}
	tag, err := localeArg(args, 0)
	if err != nil {
		return nil, err
	}
	return object.String(cases.Upper(tag).String(object.ToString(val))), nil
}

// LowerConverter lower-cases text for a locale: `name | lower`.
type LowerConverter struct{}

// ToView lower-cases val.
func (LowerConverter) ToView(val object.Object, args []object.Object) (object.Object, error) {
	if object.IsNullish(val) {
		return val, nil
	}
	tag, err := localeArg(args, 0)
	if err != nil {
		return nil, err
	}
	return object.String(cases.Lower(tag).String(object.ToString(val))), nil
}

// JSONConverter shows a value as JSON and parses JSON written back:
// `settings | json`.
type JSONConverter struct{}

// ToView serializes val.
func (JSONConverter) ToView(val object.Object, _ []object.Object) (object.Object, error) {
	b, err := json.Marshal(object.ToGo(val))
	if err != nil {
		return nil, err
	}
	return object.String(b), nil
}

// FromView parses val.
func (JSONConverter) FromView(val object.Object, _ []object.Object) (object.Object, error) {
	if object.IsNullish(val) {
		return val, nil
	}
	return object.ParseJSON(object.ToString(val))
}
