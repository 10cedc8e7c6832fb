package testutils

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
)

// AssertMatch is a semantic test assertion for string regex matching.
// If the pattern is empty we match only with an empty string for
// simplicity.
func AssertMatch(t *testing.T, pattern, value string, pads ...string) {
	t.Helper()

	if pattern == "" {
		AssertEqual(t, pattern, value, pads...)
		return
	}

	pads = append(pads, "does not match")
	padding := strings.Join(pads, ": ")

	match, err := regexp.MatchString(pattern, value)
	if err != nil {
		t.Fatal(err)
	}
	if !match {
		t.Errorf(
			"%s:\n string: %q\npattern: re%q",
			padding, value, pattern)
	}
}

// AssertEqual is a semantic test assertion for comparable equality.
func AssertEqual[T comparable](t *testing.T, expected, actual T, pads ...string) {
	t.Helper()
	if expected != actual {
		pads = append(pads, "not equal")
		padding := strings.Join(pads, ": ")
		t.Errorf("%s:\nexpected: %v\n  actual: %v\n", padding, expected, actual)
	}
}

// AssertNotEqual is a semantic test assertion for comparable
// inequality.
func AssertNotEqual[T comparable](t *testing.T, expected, actual T, pads ...string) {
	t.Helper()
	if expected == actual {
		pads = append(pads, "is equal")
		padding := strings.Join(pads, ": ")
		t.Errorf("%s:\nexpected: %v\n  actual: %v\n", padding, expected, actual)
	}
}

// AssertNil is a semantic test assertion for error nility.
func AssertNil(t *testing.T, err error, pads ...string) {
	t.Helper()
	if err != nil {
		pads = append(pads, "not nil")
		padding := strings.Join(pads, ": ")
		t.Errorf("%s: %v\n", padding, err)
	}
}

// AssertNotNil is a semantic test assertion for error nility.
func AssertNotNil(t *testing.T, err error, pads ...string) {
	t.Helper()
	if err == nil {
		pads = append(pads, "is nil")
		padding := strings.Join(pads, ": ")
		t.Error(padding)
	}
}

// AssertTrue is a semantic test assertion for truthiness.
func AssertTrue(t *testing.T, object bool, pads ...string) {
	t.Helper()
	if !object {
		pads = append(pads, "is not true")
		padding := strings.Join(pads, ": ")
		t.Error(padding)
	}
}

// AssertFalse is a semantic test assertion for truthiness.
func AssertFalse(t *testing.T, object bool, pads ...string) {
	t.Helper()
	if object {
		pads = append(pads, "is not false")
		padding := strings.Join(pads, ": ")
		t.Error(padding)
	}
}

// AssertLinesMatch breaks a rendered stack into lines and matches each
// with a regex per line. An empty pattern line requires an empty line.
func AssertLinesMatch(t *testing.T, got string, expected ...string) {
	t.Helper()

	gotLines := strings.Split(got, "\n")
	if len(expected) != len(gotLines) {
		t.Errorf(
			"wantLines(%d) does not equal gotLines(%d):\n got: %q\nwant: %q",
			len(expected), len(gotLines), got, strings.Join(expected, "\n"))
		return
	}

	for i, w := range expected {
		AssertMatch(t, w, gotLines[i], "line "+strconv.Itoa(i+1))
	}
}
