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
  "path"
  "testing"
  "io/ioutil"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
)

func TestDefaultSweep(t *testing.T) {
  sweep := DefaultSweep()
  assert.Equal(t, []int{2, 4, 8, 16}, sweep.NProcs)
  assert.Equal(t, []int{1, 2, 3, 4}, sweep.MeshLevels)
}

func TestNewSweepSpec(t *testing.T) {
  filePath := path.Join(t.TempDir(), "sweep.yaml")
  err := ioutil.WriteFile(filePath, []byte(
    "nprocs: [4, 8]\nmesh_levels: [2, 3]\n",
  ), 0644)
  require.NoError(t, err)

  sweep, err := NewSweepSpec(filePath)
  require.NoError(t, err)
  assert.Equal(t, []int{4, 8}, sweep.NProcs)
  assert.Equal(t, []int{2, 3}, sweep.MeshLevels)
}

func TestNewSweepSpecPartial(t *testing.T) {
  filePath := path.Join(t.TempDir(), "sweep.yaml")
  err := ioutil.WriteFile(filePath, []byte("nprocs: [32]\n"), 0644)
  require.NoError(t, err)

  sweep, err := NewSweepSpec(filePath)
  require.NoError(t, err)
  assert.Equal(t, []int{32}, sweep.NProcs)
  assert.Equal(t, DefaultSweep().MeshLevels, sweep.MeshLevels)
}

func TestNewSweepSpecMissing(t *testing.T) {
  _, err := NewSweepSpec(path.Join(t.TempDir(), "nope.yaml"))
  require.Error(t, err)
}
