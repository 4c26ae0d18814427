package config

import "time"

// Application constants for the eTender export tool
const (
	// Application Info
	AppName    = "eTender Export Tool"
	AppVersion = "2.0.0"

	// Directory names, relative to the base directory (working directory by default)
	DefaultDownloadDir = "ETENDER_DOWNLOAD"
	DefaultCombinedDir = "ETENDER_COMBINED"
	DefaultLogsDir     = "logs"
	DefaultLogFile     = "etender.log"
	DefaultMetricsFile = "etender.prom"

	// Download naming
	DefaultFilePrefix    = "eTender_"
	DefaultFileExtension = ".xls"

	// Spreadsheet layout: data begins after this many banner rows
	DefaultHeaderRows = 2

	// History starts here
	DefaultStartYear = 2000

	// Derived columns appended to every combined row
	SourceNameColumn     = "Source Name"
	ExportDateTimeColumn = "ExportDateTime"

	// Layouts
	ExportDateTimeLayout = "02-Jan-2006 03:04 PM"
	CombinedFileLayout   = "20060102"
	CombinedFileExt      = ".csv"

	// Network
	DefaultHTTPTimeout       = 2 * time.Minute
	DefaultConcurrency       = 4
	DefaultRequestsPerSecond = 2.0
	DefaultBurst             = 2
	DefaultUserAgent         = "Mozilla/5.0 (compatible; eTenderExport/2.0)"
)

// Portal endpoint. Placeholders are replaced per download task.
const (
	PortalURLTemplate = "https://www.tenders.nsw.gov.au/?event=public.advancedsearch.cnDownload&decorator=XLS&agencyUUID=AGENCY_UUID&agencyStatus=%2D1&keyword=&publishFrom=PUB_START&publishTo=PUB_END&valueFrom=&valueTo=&supplierName=&supplierABN=&RFTID=&contractFrom=&contractTo=&category=&Postcode=&piggyback=&download="

	PlaceholderAgency = "AGENCY_UUID"
	PlaceholderStart  = "PUB_START"
	PlaceholderEnd    = "PUB_END"
)

// Agency is a government body whose tenders are queried independently.
type Agency struct {
	ID   string `yaml:"id" validate:"required"`
	Code string `yaml:"code" validate:"required"`
}

// PeriodBounds holds the day-month literals of a half-year window, already
// escaped for the portal query string. The year is appended per task.
type PeriodBounds struct {
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

// Agencies is the fixed agency table.
var Agencies = []Agency{
	{ID: "9A049771%2DBCF1%2D66C0%2DDC82BD14117A76E8", Code: "TfNSW_RMS"},  // TfNSW (Roads and Maritime Projects)
	{ID: "5C6E81DB%2DF27C%2D49D1%2DEE4FDD8E268C3100", Code: "TfNSW"},      // Transport for NSW
	{ID: "9A059A35%2DA5E2%2DAC7D%2DE2CE015DBD1A6792", Code: "TfNSW_Corp"}, // Transport NSW - Corporate
	{ID: "E3282140%2DF3F9%2DC752%2D16E52B022B0F34BB", Code: "TfNSW_Tran"}, // Transport NSW - Transport Services
}

// PeriodTable lists the two half-year windows in iteration order:
// index 0 is July to December, index 1 is January to June.
var PeriodTable = [2]PeriodBounds{
	{Start: "1%2DJul%2D", End: "31%2DDec%2D"},
	{Start: "1%2DJan%2D", End: "30%2DJun%2D"},
}

// VersionHistory is printed under the banner.
var VersionHistory = []string{
	"v2.0 -  Downloads run in parallel behind a wait-all barrier; failed downloads",
	"        are reported at the end. Combined rows are ordered by file name.",
	"v1.3 -  [2021-03-28] Added 'ExportDateTime' column to combined eTender csv file.",
	"        Column records the date and time of file creation.",
	"        Changed combined file name convention to YYYYMMDD",
	"v1.2 -  [2021-02-05] Added 'Source Name' column to combined eTender csv file.",
	"        Column records the name of original downloaded spreadsheet.",
	"v1.1 -  [2021-02-02] Changed combined file name to date of download, format: ",
	"        DDMMYYYY. Added version history",
	"v1.0 -  [2020-12-18] New release",
}
