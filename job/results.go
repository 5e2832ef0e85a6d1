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
  "strconv"
  "strings"
  "io/ioutil"
  "encoding/csv"

  "github.com/cfd-hpc/foambench/log"
  "github.com/cfd-hpc/foambench/internal/errs"
)

const (
  // ResultsFileName is the per-run table written next to the case workspace.
  ResultsFileName = "benchmark_results.csv"

  // CombinedFileName is the sweep-wide concatenation of per-run tables.
  CombinedFileName = "combined_results.csv"

  // TableHeader is the fixed column set of both tables.
  TableHeader = "nodes,nprocs,mesh_level,cells,wall_time_seconds,exit_code"
)

// Result is one measurement: a solver run on a given node count.  A non-zero
// exit code means the experiment ran and failed, which is recorded rather
// than raised.
type Result struct {
  Nodes     int
  NProcs    int
  MeshLevel int
  Cells     int
  WallTime  float64
  ExitCode  int
}

// Record returns the row in table column order.
func (r *Result) Record() []string {
  return []string{
    strconv.Itoa(r.Nodes),
    strconv.Itoa(r.NProcs),
    strconv.Itoa(r.MeshLevel),
    strconv.Itoa(r.Cells),
    strconv.FormatFloat(r.WallTime, 'f', -1, 64),
    strconv.Itoa(r.ExitCode),
  }
}

// InitTable creates the table with its header, before any row exists.
func InitTable(filePath string) error {
  return ioutil.WriteFile(filePath, []byte(TableHeader+"\n"), 0644)
}

// AppendResult appends a single row to an initialized table.
func AppendResult(filePath string, result *Result) error {
  f, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY, 0644)
  if err != nil {
    return errs.New(errs.CodeIO, "Could not open table: %s", err)
  }

  defer f.Close()

  _, err = fmt.Fprintf(f, "%s\n", strings.Join(result.Record(), ","))
  return err
}

// ReadTable parses a per-run table back into result rows.
func ReadTable(filePath string) ([]Result, error) {
  f, err := os.Open(filePath)
  if err != nil {
    return nil, errs.New(errs.CodeIO, "Could not open table: %s", err)
  }

  defer f.Close()

  records, err := csv.NewReader(f).ReadAll()
  if err != nil {
    return nil, errs.New(errs.CodeIO, "Could not parse table: %s", err)
  }

  if len(records) == 0 || strings.Join(records[0], ",") != TableHeader {
    return nil, errs.New(errs.CodeIO, "Unexpected table header: %s", filePath)
  }

  var results []Result
  for _, record := range records[1:] {
    result, err := parseRecord(record)
    if err != nil {
      return nil, errs.New(errs.CodeIO,
        "Malformed row in %s: %s", filePath, strings.Join(record, ","),
      )
    }

    results = append(results, *result)
  }

  return results, nil
}

// parseRecord converts one data row back into a result.
func parseRecord(record []string) (*Result, error) {
  if len(record) != 6 {
    return nil, fmt.Errorf("expected 6 columns, got %d", len(record))
  }

  var result Result
  var err error

  for i, field := range []*int{
    &result.Nodes, &result.NProcs, &result.MeshLevel, &result.Cells,
  } {
    if *field, err = strconv.Atoi(record[i]); err != nil {
      return nil, err
    }
  }

  if result.WallTime, err = strconv.ParseFloat(record[4], 64); err != nil {
    return nil, err
  }

  if result.ExitCode, err = strconv.Atoi(record[5]); err != nil {
    return nil, err
  }

  return &result, nil
}

// Combine concatenates the data rows of every existing per-run table, in the
// given order, under a single header.  Missing tables are skipped but called
// out, since their combinations failed before producing results.
func Combine(tables []string, outPath string) (int, error) {
  builder := &strings.Builder{}
  builder.WriteString(TableHeader + "\n")

  rows := 0
  for _, table := range tables {
    if _, err := os.Stat(table); os.IsNotExist(err) {
      log.Warnf("Skipping missing per-run table: %s", table)
      continue
    }

    dat, err := ioutil.ReadFile(table)
    if err != nil {
      return rows, errs.New(errs.CodeIO, "Could not read table: %s", err)
    }

    lines := strings.Split(strings.TrimRight(string(dat), "\n"), "\n")
    if len(lines) == 0 || lines[0] != TableHeader {
      return rows, errs.New(errs.CodeIO, "Unexpected table header: %s", table)
    }

    // Data rows are carried over verbatim, header stripped
    for _, line := range lines[1:] {
      if len(line) == 0 {
        continue
      }

      builder.WriteString(line + "\n")
      rows++
    }
  }

  if err := ioutil.WriteFile(outPath, []byte(builder.String()), 0644); err != nil {
    return rows, errs.New(errs.CodeIO, "Could not write combined table: %s", err)
  }

  return rows, nil
}
