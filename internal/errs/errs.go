package errs
// SPDX-License-Identifier: BSD-3-Clause
//
// Authors: Alexander Jung <a.jung@lancs.ac.uk>
//
// Copyright (c) 2021, Lancaster University.  All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the names of its
//    contributors may be used to endorse or promote products derived from
//    this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

import (
  "errors"
  "fmt"
)

const (
  // CodeConfiguration indicates bad or missing user input, caught before any
  // side effect takes place.
  CodeConfiguration     = "configuration"
  // CodeIO indicates a missing template, case file or container image.
  CodeIO                = "io"
  // CodeMissingDependency indicates the sandbox lacks a required executable.
  CodeMissingDependency = "missing-dependency"
  // CodeCasePreparation indicates mesh generation or decomposition exited
  // non-zero.
  CodeCasePreparation   = "case-preparation"
  // CodeSubmission indicates the scheduler rejected a job or could not be
  // reached at all.
  CodeSubmission        = "submission"
)

// Error carries a stable machine-readable code next to its message.
type Error struct {
  code    string
  message string
}

func New(code string, format string, args ...interface{}) *Error {
  return &Error{
    code:    code,
    message: fmt.Sprintf(format, args...),
  }
}

func (e *Error) Error() string {
  return e.message
}

func (e *Error) Code() string {
  return e.code
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code string) bool {
  var e *Error
  if errors.As(err, &e) {
    return e.code == code
  }
  return false
}
