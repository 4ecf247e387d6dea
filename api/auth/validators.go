package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/elimu/core"
)

var (
	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// RegisterValidators registers the registration password policy on the
// given validator.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(registerStructValidation, RegisterInput{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

func registerStructValidation(sl validator.StructLevel) {
	in := sl.Current().Interface().(RegisterInput)
	validatePassword(sl, in.Password, "password", "Password", in.Name, in.Email)
}

// validatePassword applies the password policy on pwd; attrs are user
// attributes pwd must not be too similar to.
func validatePassword(sl validator.StructLevel, pwd, fieldName, structFieldName string, attrs ...string) {
	if pwd == "" {
		return // `required` covers this one
	}

	if len(pwd) < pwdMinLen {
		sl.ReportError(pwd, fieldName, structFieldName, pwdMinLenTag, "")
	}
	if strings.ContainsAny(pwd, " \t\n\v\f\r") {
		sl.ReportError(pwd, fieldName, structFieldName, pwdNoSpaceTag, "")
	}
	if isAllNumeric(pwd) {
		sl.ReportError(pwd, fieldName, structFieldName, pwdNotAllNumTag, "")
	}
	if !isComplexEnough(pwd) {
		sl.ReportError(pwd, fieldName, structFieldName, pwdComplexityTag, "")
	}
	if isTooSimilar(pwd, attrs) {
		sl.ReportError(pwd, fieldName, structFieldName, pwdAttrSimTag, "")
	}
}

func isAllNumeric(pwd string) bool {
	for _, r := range pwd {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isComplexEnough(pwd string) bool {
	var upper, lower, digit bool
	for _, r := range pwd {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit && specialRegex.MatchString(pwd)
}

// isTooSimilar checks pwd against each attr with a SequenceMatcher
// ratio capped at pwdMaxSim.
func isTooSimilar(pwd string, attrs []string) bool {
	pwd = strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(attr, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return true
		}
	}
	return false
}
