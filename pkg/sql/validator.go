// Package sql provides lightweight structural SQL analysis: statement
// normalization, statement-kind detection, and table/column reference
// extraction. It is deliberately not a SQL parser; the validation
// pipeline only needs token-level structure.
package sql

import "strings"

// Normalize trims whitespace and strips a single trailing semicolon so
// that downstream pattern checks see a canonical statement.
func Normalize(sqlQuery string) string {
	sqlQuery = strings.TrimSpace(sqlQuery)
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}
	return sqlQuery
}

// HasStackedStatements reports whether a normalized statement still
// contains a semicolon outside of string literals. Since Normalize has
// already removed the trailing semicolon, any remaining one indicates a
// second, stacked statement.
func HasStackedStatements(sqlQuery string) bool {
	return semicolonOutsideStrings(Normalize(sqlQuery))
}

// semicolonOutsideStrings scans the statement with a small quote-state
// machine. Both backslash escapes (\') and SQL doubled quotes ('') are
// handled; a doubled quote exits and immediately re-enters the string
// state, which is equivalent to staying inside it.
func semicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// StringLiterals returns the contents of single-quoted string literals in
// the statement, in order of appearance. Used by the security screener to
// run injection fingerprinting over attacker-controllable values.
func StringLiterals(sqlQuery string) []string {
	var literals []string
	var current strings.Builder
	inString := false
	prevChar := rune(0)

	for _, char := range sqlQuery {
		if inString {
			if char == '\'' && prevChar != '\\' {
				inString = false
				literals = append(literals, current.String())
				current.Reset()
			} else {
				current.WriteRune(char)
			}
		} else if char == '\'' {
			inString = true
		}
		prevChar = char
	}

	return literals
}
