package run
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
  "os"
  "fmt"
  "time"
  "os/exec"

  "github.com/cfd-hpc/foambench/log"
)

// Result captures the outcome of one external tool invocation: the exit
// status, how long it ran, and where its output was written.  A non-zero
// exit code is data, not an error.
type Result struct {
  ExitCode int
  Elapsed  time.Duration
  LogPath  string
}

// execute runs a command with stdout and stderr streamed to a log file which
// is kept regardless of the outcome.
func execute(dir string, logPath string, argv ...string) (*Result, error) {
  logFile, err := os.OpenFile(
    logPath,
    os.O_CREATE|os.O_WRONLY|os.O_TRUNC,
    0644,
  )
  if err != nil {
    return nil, fmt.Errorf("Could not create log file: %s", err)
  }

  defer logFile.Close()

  cmd := exec.Command(argv[0], argv[1:]...)
  cmd.Dir = dir
  cmd.Stdout = logFile
  cmd.Stderr = logFile

  log.Debugf("Running: %v", argv)

  timer := time.Now()
  err = cmd.Run()
  elapsed := time.Since(timer)

  result := &Result{
    ExitCode: 0,
    Elapsed:  elapsed,
    LogPath:  logPath,
  }

  if err != nil {
    // A non-zero exit is reported through the result, anything else is a
    // failure to run the tool at all.
    if exitErr, ok := err.(*exec.ExitError); ok {
      result.ExitCode = exitErr.ExitCode()
      return result, nil
    }

    return nil, fmt.Errorf("Could not run %s: %s", argv[0], err)
  }

  return result, nil
}
