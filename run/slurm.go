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
  "sync"
  "time"
  "regexp"
  "strings"
  "os/exec"
  "io/ioutil"
  "text/template"

  "github.com/tidwall/gjson"

  "github.com/cfd-hpc/foambench/log"
  "github.com/cfd-hpc/foambench/internal/errs"
)

// BatchOpts binds one (workspace, node count) pair to the resource request
// and execution body submitted to the scheduler.
type BatchOpts struct {
  JobName      string
  Nodes        int
  Tasks        int
  TasksPerNode int
  Time         string
  Partition    string
  Account      string
  Output       string
  Error        string
  Body         string
}

var batchTemplate = `#!/bin/bash
#SBATCH --job-name={{.JobName}}
#SBATCH --nodes={{.Nodes}}
#SBATCH --ntasks={{.Tasks}}
#SBATCH --ntasks-per-node={{.TasksPerNode}}
#SBATCH --time={{.Time}}
#SBATCH --output={{.Output}}
#SBATCH --error={{.Error}}
{{if .Partition -}}
#SBATCH --partition={{.Partition}}
{{end -}}
{{if .Account -}}
#SBATCH --account={{.Account}}
{{end -}}

{{.Body}}
`

var jobIDPattern = regexp.MustCompile(`Submitted batch job (\d+)`)

// terminalStates are the scheduler states after which a job will do no more
// work.
var terminalStates = []string{
  "COMPLETED",
  "FAILED",
  "CANCELLED",
  "TIMEOUT",
  "NODE_FAIL",
  "PREEMPTED",
  "BOOT_FAIL",
  "DEADLINE",
  "OUT_OF_MEMORY",
}

var (
  activeJobs   = map[string]bool{}
  activeJobsMu sync.Mutex
)

// TasksPerNode returns the per-node task cap declared to the scheduler for
// spreading procs tasks over nodes machines.  The last node may run fewer
// tasks; the scheduler distributes the remainder.
func TasksPerNode(procs int, nodes int) int {
  return (procs + nodes - 1) / nodes
}

// RenderBatchScript produces the batch script text for the given options.
func RenderBatchScript(opts *BatchOpts) (string, error) {
  t, err := template.New("sbatch").Parse(batchTemplate)
  if err != nil {
    return "", err
  }

  builder := &strings.Builder{}
  if err := t.Execute(builder, opts); err != nil {
    return "", err
  }

  return builder.String(), nil
}

// WriteBatchScript renders the batch script to a file.
func WriteBatchScript(path string, opts *BatchOpts) error {
  script, err := RenderBatchScript(opts)
  if err != nil {
    return err
  }

  return ioutil.WriteFile(path, []byte(script), 0755)
}

// Submit hands a batch script to the scheduler and returns the job ID.  The
// job is registered so that an interrupted process can cancel it.
func Submit(script string, extraArgs string) (string, error) {
  argv := []string{"sbatch"}
  if len(extraArgs) > 0 {
    argv = append(argv, strings.Fields(extraArgs)...)
  }
  argv = append(argv, script)

  out, err := exec.Command(argv[0], argv[1:]...).CombinedOutput()
  if err != nil {
    return "", errs.New(errs.CodeSubmission,
      "Could not submit job: %s: %s", err, strings.TrimSpace(string(out)),
    )
  }

  jobID, err := parseJobID(out)
  if err != nil {
    return "", err
  }

  activeJobsMu.Lock()
  activeJobs[jobID] = true
  activeJobsMu.Unlock()

  log.Infof("Submitted batch job %s", jobID)

  return jobID, nil
}

// parseJobID extracts the job identifier from sbatch output.
func parseJobID(out []byte) (string, error) {
  match := jobIDPattern.FindStringSubmatch(string(out))
  if len(match) < 2 {
    return "", errs.New(errs.CodeSubmission,
      "Could not parse job ID from scheduler output: %s",
      strings.TrimSpace(string(out)),
    )
  }

  return match[1], nil
}

// maxPollFailures is how many consecutive failed queue queries are tolerated
// before a job is assumed to have finished.
const maxPollFailures = 3

// Wait blocks until the job reaches a terminal state or disappears from the
// queue, polling at the given interval.  It returns the last state seen.
// A transient queue failure must not end the wait early, or the next
// submission would overlap the still-running job.
func Wait(jobID string, interval time.Duration) string {
  defer func() {
    activeJobsMu.Lock()
    delete(activeJobs, jobID)
    activeJobsMu.Unlock()
  }()

  failures := 0
  for {
    state, ok, err := queryState(jobID)
    if err != nil {
      failures++
      if failures >= maxPollFailures {
        log.Warnf("Could not query job %s after %d attempts, assuming finished: %s",
          jobID, failures, err)
        return state
      }

      log.Debugf("Could not query job %s: %s", jobID, err)
      time.Sleep(interval)
      continue
    }
    failures = 0

    if !ok {
      // The job is no longer known to the queue, so it has finished.
      return state
    }

    if isTerminal(state) {
      return state
    }

    log.Debugf("Job %s is %s", jobID, state)
    time.Sleep(interval)
  }
}

// queryState asks the queue for the job's current state.  The second return
// value is false once the job is genuinely gone from the queue; any other
// query failure, such as a controller timeout, is reported as an error.
func queryState(jobID string) (string, bool, error) {
  out, err := exec.Command(
    "squeue", "--noheader", "--json", "--jobs", jobID,
  ).Output()
  if err != nil {
    // squeue rejects the ids of jobs that already left the queue.
    if exitErr, ok := err.(*exec.ExitError); ok &&
      strings.Contains(string(exitErr.Stderr), "Invalid job id") {
      return "", false, nil
    }

    return "", false, err
  }

  jobs := gjson.GetBytes(out, "jobs")
  if !jobs.Exists() || len(jobs.Array()) == 0 {
    return "", false, nil
  }

  state := gjson.GetBytes(out, "jobs.0.job_state")
  if state.IsArray() {
    // Newer schedulers report the state as a flag list
    flags := state.Array()
    if len(flags) == 0 {
      return "", false, nil
    }
    return flags[0].String(), true, nil
  }

  return state.String(), true, nil
}

func isTerminal(state string) bool {
  for _, terminal := range terminalStates {
    if strings.HasPrefix(state, terminal) {
      return true
    }
  }
  return false
}

// Cancel asks the scheduler to cancel a job.
func Cancel(jobID string) error {
  out, err := exec.Command("scancel", jobID).CombinedOutput()
  if err != nil {
    return errs.New(errs.CodeSubmission,
      "Could not cancel job %s: %s: %s",
      jobID, err, strings.TrimSpace(string(out)),
    )
  }

  return nil
}

// CancelActive cancels every job submitted by this process which has not
// yet been waited to completion.  Called on interrupt so that no scheduler
// job is left running unmanaged.
func CancelActive() {
  activeJobsMu.Lock()
  jobIDs := make([]string, 0, len(activeJobs))
  for jobID := range activeJobs {
    jobIDs = append(jobIDs, jobID)
  }
  activeJobsMu.Unlock()

  for _, jobID := range jobIDs {
    log.Warnf("Cancelling job %s", jobID)
    if err := Cancel(jobID); err != nil {
      log.Errorf("%s", err)
    }
  }
}
