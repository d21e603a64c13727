package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/filequery/domain/model"
)

// writePattern matches statement keywords that can modify data or run code
var writePattern = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|EXEC|EXECUTE|CALL)\b`)

// selectPattern matches a leading SELECT keyword
var selectPattern = regexp.MustCompile(`(?i)^SELECT\b`)

// ValidateReadOnly rejects text that is not a single read-only SELECT.
// Keywords are matched as whole words outside quoted literals, so a column
// named created_at is accepted while a nested DELETE is not.
func ValidateReadOnly(text string) error {
	text = strings.TrimSpace(text)
	if !selectPattern.MatchString(text) {
		return fmt.Errorf("%w: statement must start with SELECT", model.ErrUnsafeQuery)
	}

	masked := maskLiterals(text)
	if kw := writePattern.FindString(masked); kw != "" {
		return fmt.Errorf("%w: %s is not allowed", model.ErrUnsafeQuery, strings.ToUpper(kw))
	}
	if strings.Contains(strings.TrimRight(masked, "; \t\r\n"), ";") {
		return fmt.Errorf("%w: multiple statements", model.ErrUnsafeQuery)
	}
	return nil
}

// maskLiterals blanks out the contents of single-quoted string literals
func maskLiterals(s string) string {
	b := []byte(s)
	inLiteral := false
	for i := range b {
		switch {
		case b[i] == '\'':
			inLiteral = !inLiteral
		case inLiteral:
			b[i] = ' '
		}
	}
	return string(b)
}
