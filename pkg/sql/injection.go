package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// LiteralInjection describes an injection pattern found inside a string
// literal of a candidate statement.
type LiteralInjection struct {
	Literal     string // The literal content that failed the check
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckLiteralsForInjection runs libinjection fingerprinting over every
// string literal in the statement. Literals are the attacker-controllable
// surface of generated SQL: a benign-looking statement with a literal of
// "' OR '1'='1" carries the injection inside the quoted value.
//
// Returns nil if no literal matches an injection fingerprint.
func CheckLiteralsForInjection(sqlQuery string) []LiteralInjection {
	var findings []LiteralInjection
	for _, literal := range StringLiterals(sqlQuery) {
		// Short plain values ("C001", "pending") never fingerprint; skip
		// the call for the common case.
		if literal == "" {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(literal); isSQLi {
			findings = append(findings, LiteralInjection{
				Literal:     literal,
				Fingerprint: string(fingerprint),
			})
		}
	}
	return findings
}
