// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoder

import (
	"fmt"

	nmea "github.com/adrianmo/go-nmea"
)

// Encoder boards print one NMEA-framed line per report:
//
//	$RBENC,<left ticks>,<right ticks>*CS
const (
	SentenceTalker = "RB"
	SentenceType   = "ENC"
)

// Sentence is a parsed RBENC line.
type Sentence struct {
	nmea.BaseSentence
	Left  int64
	Right int64
}

func init() {
	nmea.MustRegisterParser(SentenceType, parseSentence)
}

func parseSentence(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(SentenceType)
	m := Sentence{
		BaseSentence: s,
		Left:         p.Int64(0, "left ticks"),
		Right:        p.Int64(1, "right ticks"),
	}
	return m, p.Err()
}

// ParseSentence parses one line from an encoder board. The checksum is
// mandatory.
func ParseSentence(line string) (Sample, error) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		return Sample{}, fmt.Errorf("encoder sentence: %w", err)
	}
	m, ok := sentence.(Sentence)
	if !ok {
		return Sample{}, fmt.Errorf("encoder sentence: unexpected type %s", sentence.DataType())
	}
	return Sample{Left: m.Left, Right: m.Right}, nil
}

// FormatSentence renders a sample the way the encoder boards do.
func FormatSentence(s Sample) string {
	body := fmt.Sprintf("%s%s,%d,%d", SentenceTalker, SentenceType, s.Left, s.Right)
	return "$" + body + "*" + nmea.Checksum(body)
}
