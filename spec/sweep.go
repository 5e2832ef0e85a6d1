package spec
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
  "io/ioutil"

  "gopkg.in/yaml.v2"
  log "github.com/sirupsen/logrus"
)

// SweepSpec lists the process counts and mesh levels iterated by a sweep.
// The cross-product of the two lists is executed in nested order.
type SweepSpec struct {
  NProcs     []int `yaml:"nprocs"`
  MeshLevels []int `yaml:"mesh_levels"`
}

// DefaultSweep is the fixed sweep executed when no spec file is given.
func DefaultSweep() *SweepSpec {
  return &SweepSpec{
    NProcs:     []int{2, 4, 8, 16},
    MeshLevels: []int{1, 2, 3, 4},
  }
}

// NewSweepSpec reads a sweep yaml file
func NewSweepSpec(filePath string) (*SweepSpec, error) {
  // Check if the path is set
  if len(filePath) == 0 {
    return nil, fmt.Errorf("File path cannot be empty")
  }

  // Check if the file exists
  if _, err := os.Stat(filePath); os.IsNotExist(err) {
    return nil, fmt.Errorf("File does not exist: %s", filePath)
  }

  // Slurp the file contents into memory
  dat, err := ioutil.ReadFile(filePath)
  if err != nil {
    return nil, err
  }

  if len(dat) == 0 {
    return nil, fmt.Errorf("File is empty")
  }

  sweep := SweepSpec{}

  err = yaml.Unmarshal(dat, &sweep)
  if err != nil {
    return nil, err
  }

  // Fall back to the fixed defaults for anything the file leaves out
  if len(sweep.NProcs) == 0 {
    sweep.NProcs = DefaultSweep().NProcs
  }
  if len(sweep.MeshLevels) == 0 {
    sweep.MeshLevels = DefaultSweep().MeshLevels
  }

  log.Debugf("Read in sweep configuration: %s", filePath)

  return &sweep, nil
}
