package model

// PageIndex is a 0-based page number within a file, in units of the system
// page size.
type PageIndex uint64

// Block is the decoded form of one snapshot record: a file path followed by
// the absolute indices of its resident pages, ascending.
type Block struct {
	Path  Path        `yaml:"path"`
	Pages []PageIndex `yaml:"pages,flow"`
}

// Stats holds the counters collected during a dump run.
type Stats struct {
	Directories        uint64
	FilesSeen          uint64
	FilesScanned       uint64
	FilesSkipped       uint64
	FilesWithResidency uint64
	ResidentPages      uint64
	ScannedBytes       uint64
}
