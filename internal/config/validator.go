// Package config parses and validates the CLI surface in §6: a
// reflection-tag validator enforces required/min/max/len/url rules on
// CLIConfig's fields, and ParseFlags clamps the out-of-range values §7
// says must be clamped rather than rejected.
package config

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// tagValidator walks a struct's fields looking for a given tag (e.g.
// "validate") and enforces "required", "min", "max", "len", and "url"
// rules found in it. "url" is CLI-specific: -html is an optional flag,
// so an empty HTMLSeed passes, but a non-empty one must parse as an
// absolute http(s) URL — flag.Parse itself has no notion of a URL type,
// so nothing upstream of Validate ever rejects a malformed -html value.
type tagValidator struct {
	key string
}

func newTagValidator(key string) *tagValidator {
	return &tagValidator{key: key}
}

func (v *tagValidator) Validate(i any) error {
	val := reflect.TypeOf(i)
	for idx := 0; idx < val.NumField(); idx++ {
		field := val.Field(idx)
		tagSTR := field.Tag.Get(v.key)
		if tagSTR == "" {
			continue
		}

		f := reflect.ValueOf(i).FieldByName(field.Name)

		for _, tag := range strings.Split(tagSTR, ",") {
			entity := strings.SplitN(tag, "=", 2)

			switch strings.ToLower(entity[0]) {
			case "required":
				if f.Kind() != reflect.Bool && f.IsZero() {
					return errors.New("required field is empty: " + field.Name)
				}

			case "min":
				if f.Kind() == reflect.Int {
					border, err := strconv.ParseInt(entity[1], 10, 64)
					if err != nil {
						return err
					}
					if f.Int() < border {
						return errors.New("field " + field.Name + " less than min")
					}
				}

			case "max":
				if f.Kind() == reflect.Int {
					border, err := strconv.ParseInt(entity[1], 10, 64)
					if err != nil {
						return err
					}
					if f.Int() > border {
						return errors.New("field " + field.Name + " greater than max")
					}
				}

			case "url":
				if f.Kind() == reflect.String {
					raw := f.String()
					if raw == "" {
						continue
					}
					parsed, err := url.Parse(raw)
					if err != nil || parsed.Scheme == "" || parsed.Host == "" {
						return errors.New("field " + field.Name + " is not an absolute URL")
					}
					if parsed.Scheme != "http" && parsed.Scheme != "https" {
						return errors.New("field " + field.Name + " must use http or https")
					}
				}

			case "len":
				if f.Kind() == reflect.Slice || f.Kind() == reflect.Array || f.Kind() == reflect.Map || f.Kind() == reflect.String {
					borders := strings.Split(entity[1], ":")
					if len(borders) != 2 {
						return errors.New("invalid len tag format in field: " + field.Name)
					}
					min, err := strconv.Atoi(borders[0])
					if err != nil {
						return err
					}
					max, err := strconv.Atoi(borders[1])
					if err != nil {
						return err
					}
					if f.Len() < min || f.Len() > max {
						return errors.New("field " + field.Name + " length not in range")
					}
				}

			default:
				return errors.New("unknown tag: " + entity[0] + " in field: " + field.Name)
			}
		}
	}
	return nil
}
