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
  "strings"
  "os/exec"
  "path/filepath"

  "github.com/novln/docker-parser"

  "github.com/cfd-hpc/foambench/log"
  "github.com/cfd-hpc/foambench/internal/errs"
)

// runtimeBins are the container runtimes probed for, in order of preference.
var runtimeBins = []string{"apptainer", "singularity"}

// Sandbox wraps a container image so that the solver toolchain can be
// invoked inside it as an opaque execution environment.
type Sandbox struct {
  Image   string
  runtime string
}

// NewSandbox resolves the container runtime on the host and the image
// reference.  A local path is used as-is; anything else is parsed as a
// registry reference and handed to the runtime as docker://.
func NewSandbox(container string) (*Sandbox, error) {
  var runtime string
  for _, bin := range runtimeBins {
    if _, err := exec.LookPath(bin); err == nil {
      runtime = bin
      break
    }
  }

  if len(runtime) == 0 {
    return nil, errs.New(errs.CodeMissingDependency,
      "No container runtime found on host (tried %s)",
      strings.Join(runtimeBins, ", "),
    )
  }

  image := container
  if _, err := os.Stat(container); err == nil {
    image, err = filepath.Abs(container)
    if err != nil {
      return nil, err
    }
  } else {
    ref, perr := dockerparser.Parse(container)
    if perr != nil {
      return nil, errs.New(errs.CodeIO,
        "Container not found and not a valid image reference: %s", container,
      )
    }

    image = "docker://" + ref.Remote()
  }

  log.Debugf("Using container runtime %s with image %s", runtime, image)

  return &Sandbox{
    Image:   image,
    runtime: runtime,
  }, nil
}

// Command returns the command prefix which executes a program inside the
// sandbox, for embedding into a batch script body.
func (s *Sandbox) Command() string {
  return fmt.Sprintf("%s exec %s", s.runtime, s.Image)
}

// HasExecutable reports whether the named program resolves inside the
// sandbox.
func (s *Sandbox) HasExecutable(name string) bool {
  cmd := exec.Command(s.runtime, "exec", s.Image, "which", name)
  return cmd.Run() == nil
}

// CheckExecutables fails fast if any of the named programs is missing from
// the sandbox, so that a case is never left half prepared.
func (s *Sandbox) CheckExecutables(names ...string) error {
  for _, name := range names {
    if !s.HasExecutable(name) {
      return errs.New(errs.CodeMissingDependency,
        "Executable not found in container: %s", name,
      )
    }
  }

  return nil
}

// Exec runs a program inside the sandbox, blocking until it finishes and
// keeping its output under logPath.
func (s *Sandbox) Exec(dir string, logPath string, args ...string) (*Result, error) {
  argv := append([]string{s.runtime, "exec", s.Image}, args...)
  return execute(dir, logPath, argv...)
}
