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
  "io/ioutil"
  "os/signal"

	"github.com/spf13/cobra"

	"github.com/cfd-hpc/foambench/log"
	"github.com/cfd-hpc/foambench/job"
	"github.com/cfd-hpc/foambench/run"
	"github.com/cfd-hpc/foambench/spec"
)

type RunConfig struct {
  Container  string
  Template   string
  NProcs     int
  MeshLevel  int
  Nodes      string
  EndTime    float64
  WallTime   string
  Partition  string
  Account    string
  SbatchArgs string
  OutputDir  string
}

var (
  runCmd = &cobra.Command{
    Use: "run [OPTIONS...]",
    Short: `Benchmark the solver across node counts for one configuration`,
    Run: doRunCmd,
    Args: cobra.NoArgs,
    DisableFlagsInUseLine: true,
  }
  runConfig = &RunConfig{}
)

func init() {
  runCmd.PersistentFlags().StringVar(
    &runConfig.Container,
    "container",
    "",
    "Container image with the solver toolchain (path or registry reference).",
  )
  runCmd.PersistentFlags().IntVar(
    &runConfig.NProcs,
    "nprocs",
    0,
    "Total number of solver processes, held fixed across node counts.",
  )
  runCmd.PersistentFlags().IntVar(
    &runConfig.MeshLevel,
    "mesh-level",
    0,
    "Mesh refinement level (1-4).",
  )
  runCmd.PersistentFlags().StringVar(
    &runConfig.Nodes,
    "nodes",
    "",
    "Comma-separated node counts to compare, e.g. 1,2,4.",
  )
  runCmd.PersistentFlags().StringVar(
    &runConfig.Template,
    "template",
    "templates/cavity",
    "Case template directory.",
  )
  runCmd.PersistentFlags().Float64Var(
    &runConfig.EndTime,
    "end-time",
    0,
    "Simulation end time override (default: template default).",
  )
  runCmd.PersistentFlags().StringVar(
    &runConfig.WallTime,
    "time",
    spec.DefaultWallTime,
    "Wall-time limit declared to the scheduler (HH:MM:SS).",
  )
  runCmd.PersistentFlags().StringVar(
    &runConfig.Partition,
    "partition",
    "",
    "Scheduler partition.",
  )
  runCmd.PersistentFlags().StringVar(
    &runConfig.Account,
    "account",
    "",
    "Scheduler account.",
  )
  runCmd.PersistentFlags().StringVar(
    &runConfig.SbatchArgs,
    "sbatch-args",
    "",
    "Extra arguments passed through to sbatch verbatim.",
  )
  runCmd.PersistentFlags().StringVarP(
    &runConfig.OutputDir,
    "output-dir",
    "o",
    "",
    "Directory for the case workspace, logs and results.",
  )
}

// doRunCmd
func doRunCmd(cmd *cobra.Command, args []string) {
  params, err := runConfig.Params()
  if err != nil {
    log.Errorf("Could not parse configuration: %s", err)
    os.Exit(1)
  }

  setupInterruptHandler()

  j, err := job.NewJob(params)
  if err != nil {
    log.Errorf("Could not create job: %s", err)
    os.Exit(1)
  }

  if err := j.Prepare(); err != nil {
    log.Errorf("Could not prepare case: %s", err)
    os.Exit(1)
  }

  if err := j.Start(); err != nil {
    log.Errorf("Could not run benchmark: %s", err)
    cleanup()
    os.Exit(1)
  }
}

// Params builds the immutable parameter set from the command line.
func (c *RunConfig) Params() (*spec.Params, error) {
  nodes, err := spec.ParseNodes(c.Nodes)
  if err != nil {
    return nil, err
  }

  params := &spec.Params{
    Container:  c.Container,
    Template:   c.Template,
    NProcs:     c.NProcs,
    MeshLevel:  c.MeshLevel,
    Nodes:      nodes,
    EndTime:    c.EndTime,
    WallTime:   c.WallTime,
    Partition:  c.Partition,
    Account:    c.Account,
    SbatchArgs: c.SbatchArgs,
    OutputDir:  c.OutputDir,
  }

  // Rejected input must leave no side effect behind, including the fallback
  // directory below
  if err := params.Validate(); err != nil {
    return nil, err
  }

  // Fall back to a process-scoped temporary directory
  if len(params.OutputDir) == 0 {
    outputDir, err := ioutil.TempDir("", "foambench-")
    if err != nil {
      return nil, err
    }

    log.Infof("Using output directory: %s", outputDir)
    params.OutputDir = outputDir
  }

  return params, nil
}

// Create a Ctrl+C trap for cancelling submitted scheduler jobs
func setupInterruptHandler() {
  c := make(chan os.Signal, 1)
  signal.Notify(c, os.Interrupt)
  go func(){
    <-c
    cleanup()
    os.Exit(1)
  }()
}

// Leave no scheduler job running unmanaged
func cleanup() {
  log.Info("Running clean up...")
  run.CancelActive()
}
