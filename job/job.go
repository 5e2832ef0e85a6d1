package job
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
  "path"
  "regexp"
  "strconv"
  "strings"
  "io/ioutil"
  "path/filepath"
  "time"

  "github.com/cfd-hpc/foambench/log"
  "github.com/cfd-hpc/foambench/run"
  "github.com/cfd-hpc/foambench/spec"
  "github.com/cfd-hpc/foambench/internal/errs"
)

// The solver toolchain expected inside the container.
const (
  meshBin      = "blockMesh"
  decomposeBin = "decomposePar"
  solverBin    = "pisoFoam"
)

// pollInterval is how often a submitted job's state is queried.
var pollInterval = 5 * time.Second

// blockMesh reports the cell count under one of two labels depending on the
// version; no match leaves the count at the 0 sentinel, meaning unknown.
var cellCountPatterns = []*regexp.Regexp{
  regexp.MustCompile(`nCells:\s*([0-9]+)`),
  regexp.MustCompile(`(?m)^\s*cells:\s*([0-9]+)`),
}

// Job is one benchmark run: a materialized case workspace measured across a
// list of node counts with the problem size held fixed.
type Job struct {
  Params    *spec.Params
  Workspace string
  Cells     int
  sandbox   *run.Sandbox
  table     string
  log       *log.Logger
}

// NewJob validates the parameters, materializes the case workspace and
// resolves the sandbox.
func NewJob(params *spec.Params) (*Job, error) {
  if err := params.Validate(); err != nil {
    return nil, err
  }

  // The workspace and table paths end up inside the batch script, which the
  // scheduler runs from an arbitrary working directory, so the output
  // directory must be absolute.
  outputDir, err := filepath.Abs(params.OutputDir)
  if err != nil {
    return nil, errs.New(errs.CodeIO,
      "Could not resolve output directory: %s", err,
    )
  }
  params.OutputDir = outputDir

  if _, err := os.Stat(params.OutputDir); os.IsNotExist(err) {
    if err := os.MkdirAll(params.OutputDir, os.ModePerm); err != nil {
      return nil, errs.New(errs.CodeIO,
        "Could not create output directory: %s", err,
      )
    }
  }

  sandbox, err := run.NewSandbox(params.Container)
  if err != nil {
    return nil, err
  }

  workspace, err := Materialize(params)
  if err != nil {
    return nil, err
  }

  return &Job{
    Params:    params,
    Workspace: workspace,
    sandbox:   sandbox,
    table:     path.Join(params.OutputDir, ResultsFileName),
    log: &log.Logger{
      LogLevel: log.GetLevel(),
      Prefix:   fmt.Sprintf("np%d_ml%d", params.NProcs, params.MeshLevel),
    },
  }, nil
}

// Prepare generates the mesh and decomposes the domain inside the sandbox.
// The required executables are checked up front so a failure here never
// leaves a half-prepared case behind.
func (j *Job) Prepare() error {
  err := j.sandbox.CheckExecutables(meshBin, decomposeBin, solverBin)
  if err != nil {
    return err
  }

  for _, tool := range []string{meshBin, decomposeBin} {
    logPath := path.Join(j.Params.OutputDir, tool+".log")

    j.log.Infof("Running %s...", tool)

    result, err := j.sandbox.Exec(j.Workspace, logPath, tool, "-case", j.Workspace)
    if err != nil {
      return errs.New(errs.CodeCasePreparation, "%s", err)
    }

    if result.ExitCode != 0 {
      // The log file is kept for post-mortem inspection
      return errs.New(errs.CodeCasePreparation,
        "%s exited with code %d, see %s", tool, result.ExitCode, result.LogPath,
      )
    }
  }

  j.Cells = extractCellCount(path.Join(j.Params.OutputDir, meshBin+".log"))
  if j.Cells == 0 {
    j.log.Warnf("Could not determine cell count from mesh log")
  } else {
    j.log.Infof("Mesh has %d cells", j.Cells)
  }

  return nil
}

// Start initializes the per-run table and submits one scheduler job per node
// count, strictly in the order given and one at a time, so that cluster
// contention from one run cannot skew the timing of another.
func (j *Job) Start() error {
  if err := InitTable(j.table); err != nil {
    return errs.New(errs.CodeIO, "Could not initialize results table: %s", err)
  }

  for _, nodes := range j.Params.Nodes {
    if err := j.submit(nodes); err != nil {
      return err
    }
  }

  j.log.Infof("Results written to %s", j.table)

  return nil
}

// submit generates the job descriptor for one node count, hands it to the
// scheduler and blocks until the job reaches a terminal state.
func (j *Job) submit(nodes int) error {
  nodesDir := path.Join(j.Params.OutputDir, fmt.Sprintf("nodes_%d", nodes))
  if err := os.MkdirAll(nodesDir, os.ModePerm); err != nil {
    return errs.New(errs.CodeIO, "Could not create node directory: %s", err)
  }

  opts := &run.BatchOpts{
    JobName:      fmt.Sprintf("foambench-np%d-n%d", j.Params.NProcs, nodes),
    Nodes:        nodes,
    Tasks:        j.Params.NProcs,
    TasksPerNode: run.TasksPerNode(j.Params.NProcs, nodes),
    Time:         j.Params.WallTime,
    Partition:    j.Params.Partition,
    Account:      j.Params.Account,
    Output:       path.Join(nodesDir, solverBin+".%j.log"),
    Error:        path.Join(nodesDir, solverBin+".%j.err"),
    Body:         j.batchBody(nodes),
  }

  script := path.Join(nodesDir, "solver.sbatch")
  if err := run.WriteBatchScript(script, opts); err != nil {
    return errs.New(errs.CodeIO, "Could not write batch script: %s", err)
  }

  jobID, err := run.Submit(script, j.Params.SbatchArgs)
  if err != nil {
    return err
  }

  j.log.Infof("Waiting for job %s (%d nodes, %d tasks)...",
    jobID, nodes, j.Params.NProcs)

  state := run.Wait(jobID, pollInterval)
  if len(state) == 0 {
    state = "COMPLETED"
  }

  j.log.Infof("Job %s finished: %s", jobID, state)

  return nil
}

// batchBody is the execution body of the job descriptor: it times the solver
// invocation and appends one result row to the per-run table.  The solver's
// exit code is recorded as data, not raised.
func (j *Job) batchBody(nodes int) string {
  rowPrefix := fmt.Sprintf("%d,%d,%d,%d",
    nodes, j.Params.NProcs, j.Params.MeshLevel, j.Cells)

  return strings.Join([]string{
    fmt.Sprintf("cd %s", j.Workspace),
    `start=$(date +%s.%N)`,
    fmt.Sprintf("srun %s %s -parallel", j.sandbox.Command(), solverBin),
    "rc=$?",
    `end=$(date +%s.%N)`,
    `elapsed=$(echo "$end $start" | awk '{printf "%.6f", $1 - $2}')`,
    fmt.Sprintf(`echo "%s,${elapsed},${rc}" >> %s`, rowPrefix, j.table),
  }, "\n")
}

// extractCellCount scans the mesh generation log for the reported cell
// count, returning 0 when no known label matches.
func extractCellCount(logPath string) int {
  dat, err := ioutil.ReadFile(logPath)
  if err != nil {
    return 0
  }

  for _, pattern := range cellCountPatterns {
    if match := pattern.FindSubmatch(dat); len(match) == 2 {
      cells, err := strconv.Atoi(string(match[1]))
      if err == nil {
        return cells
      }
    }
  }

  return 0
}
