// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package sheets-caspio copies the rows of a Google Sheets worksheet into a Caspio table.

sheets-caspio can be used from the command line but is really intended to be run from a cron job to load
the rows of a shared worksheet (e.g. the daily advertising spend report) into a Caspio table, one record
per row, using a configurable mapping of worksheet columns to table fields.

sheets-caspio supports the following commands:

  - transfer, to insert the rows of a Google Sheets worksheet into a Caspio table (the default)
  - get, to download the mapped rows of a Google Sheets worksheet as a TSV file
  - authorise, to authorise application access to Google Sheets with OAuth2 client credentials
  - version, to display the current version
*/
package sheetscaspio
