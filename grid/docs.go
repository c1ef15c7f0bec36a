// Copyright 2024 The Alis Build Platform. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package grid holds the coordinate types and the in-memory query machinery used to locate values in a
spreadsheet grid.

  - CellIndex and Region are 1-based cell coordinates and inclusive rectangles with an A1 label form.
  - Snapshot is a point-in-time copy of a worksheet's values, owned by a single worksheet.
  - Match scans a Snapshot for cells matching a list of terms along a Direction.
  - Merge groups matched cells into maximal contiguous runs, shortest first.

The package does not talk to any remote service; populating and invalidating a Snapshot is the
responsibility of its owner.
*/
package grid //import "go.alis.build/gsheets/grid"
