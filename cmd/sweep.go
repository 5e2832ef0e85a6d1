package cmd
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

	"github.com/spf13/cobra"

	"github.com/cfd-hpc/foambench/log"
	"github.com/cfd-hpc/foambench/job"
	"github.com/cfd-hpc/foambench/spec"
)

var (
  sweepCmd = &cobra.Command{
    Use: "sweep [OPTIONS...] CONTAINER",
    Short: `Run the benchmark across all process count and mesh level combinations`,
    Run: doSweepCmd,
    Args: cobra.ExactArgs(1),
    DisableFlagsInUseLine: true,
  }
  sweepSpecFile string
)

func init() {
  sweepCmd.PersistentFlags().StringVar(
    &sweepSpecFile,
    "spec",
    "",
    "Sweep specification yaml file (default: fixed 2,4,8,16 x 1,2,3,4 sweep).",
  )

  // Single-run flags are forwarded verbatim to every combination
  sweepCmd.PersistentFlags().AddFlagSet(runCmd.PersistentFlags())
}

// doSweepCmd
func doSweepCmd(cmd *cobra.Command, args []string) {
  runConfig.Container = args[0]

  // The combination parameters are owned by the sweep controller
  runConfig.NProcs = 1
  runConfig.MeshLevel = spec.MinMeshLevel

  base, err := runConfig.Params()
  if err != nil {
    log.Errorf("Could not parse configuration: %s", err)
    os.Exit(1)
  }

  sweep := spec.DefaultSweep()
  if len(sweepSpecFile) > 0 {
    sweep, err = spec.NewSweepSpec(sweepSpecFile)
    if err != nil {
      log.Errorf("Could not read sweep specification: %s", err)
      os.Exit(1)
    }
  }

  setupInterruptHandler()

  combined, err := job.Sweep(base, sweep)
  if err != nil {
    log.Errorf("Could not complete sweep: %s", err)
    cleanup()
    os.Exit(1)
  }

  log.Infof("Sweep complete: %s", combined)
}
