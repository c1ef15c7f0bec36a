// Copyright 2024 The Alis Build Platform. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cellformat describes the user-entered format of a spreadsheet cell as a tree of optional
fields: background colour, borders, alignment, wrapping, text direction, text format and rotation.

Every node has a fixed table of fields that drives its conversion to and from the nested map (and
JSON) form used by the Google Sheets REST API, so unset fields are omitted and unknown keys ignored.
ToAPI and FromAPI map the tree onto google.golang.org/api/sheets/v4 types.

Example:

	f := &cellformat.CellFormat{}
	f.SetBackground("white", 1)
	f.Border(cellformat.Top).Style = cellformat.BorderSolid
	f.Text().Bold = cellformat.Bool(true)
	f.Text().FontSize = cellformat.Int(12)
*/
package cellformat //import "go.alis.build/gsheets/cellformat"
