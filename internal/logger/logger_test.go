// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	textTraceString = "^time=\"[0-9/:. ]{26}\" severity=TRACE message=\"hello trace\""
	textInfoString  = "^time=\"[0-9/:. ]{26}\" severity=INFO message=\"hello info\""
	textErrorString = "^time=\"[0-9/:. ]{26}\" severity=ERROR message=\"hello error\""

	jsonInfoString = `^{"timestamp":{"seconds":\d{5,},"nanos":\d{0,9}},"severity":"INFO","message":"hello info"}`
)

type LoggerTest struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

func redirectLogsToBuffer(buf *bytes.Buffer, format string, level string) {
	defaultLoggerFactory.format = format
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(buf, programLevel, ""))
	setLoggingLevel(level, programLevel)
}

func (t *LoggerTest) TestTextFormat_OnlyAboveThreshold() {
	var buf bytes.Buffer
	redirectLogsToBuffer(&buf, "text", ERROR)

	Tracef("hello trace")
	t.Assert().Empty(buf.String())

	Errorf("hello error")
	t.Assert().Regexp(regexp.MustCompile(textErrorString), buf.String())
}

func (t *LoggerTest) TestTextFormat_Trace() {
	var buf bytes.Buffer
	redirectLogsToBuffer(&buf, "text", TRACE)

	Tracef("hello trace")
	t.Assert().Regexp(regexp.MustCompile(textTraceString), buf.String())
}

func (t *LoggerTest) TestJSONFormat_Info() {
	var buf bytes.Buffer
	redirectLogsToBuffer(&buf, "json", INFO)

	Infof("hello info")
	t.Assert().Regexp(regexp.MustCompile(jsonInfoString), buf.String())
}

func (t *LoggerTest) TestOffSuppressesEverything() {
	var buf bytes.Buffer
	redirectLogsToBuffer(&buf, "text", OFF)

	Errorf("hello error")
	t.Assert().Empty(buf.String())
}

func TestSetLoggingLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{TRACE, LevelTrace},
		{DEBUG, LevelDebug},
		{INFO, LevelInfo},
		{WARNING, LevelWarn},
		{ERROR, LevelError},
		{OFF, LevelOff},
	}

	for _, tc := range testCases {
		lv := new(slog.LevelVar)
		setLoggingLevel(tc.input, lv)
		assert.Equal(t, tc.expected, lv.Level())
	}
}

func (t *LoggerTest) TestSetLogFormat() {
	var buf bytes.Buffer
	defaultLoggerFactory.sysWriter = &buf
	defaultLoggerFactory.format = "text"
	rebuild()

	SetLogFormat("json")

	t.Assert().Equal("json", defaultLoggerFactory.format)
}
