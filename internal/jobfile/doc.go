// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package jobfile reads map jobs for the pmap command from YAML or HCL.
//
// YAML:
//
//	jobs:
//	  - name: tens
//	    function: times10
//	    workers: 2
//	    inputs:
//	      - range: [0, 10]
//
// HCL:
//
//	job "tens" {
//	  function = "times10"
//	  workers  = 2
//	  input {
//	    range = [0, 10]
//	  }
//	}
//
// Numbers are normalised to int when integral and float64 otherwise, whatever the source format.
package jobfile
