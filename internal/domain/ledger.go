package domain

import "fmt"

// InternalSourceApplication marks ledger entries written by the archive itself
// (placement tables and similar). They are never purged by a clone.
const InternalSourceApplication = "_INTERNAL_"

// ModEntry is one modification in the archive's ledger
type ModEntry struct {
	Path              string
	ModOffset         int64
	OriginalOffset    int64
	ItemName          string
	ItemCategory      string
	SourceApplication string
	ModPack           string
}

// IsInternal reports whether the entry was written by the archive itself
func (m ModEntry) IsInternal() bool {
	return m.SourceApplication == InternalSourceApplication
}

// ModPack names the package a transaction's modifications are attributed to
type ModPack struct {
	Name    string
	Author  string
	Version string
}

// LedgerSnapshot is the state of one path before a batch began. A nil Mod
// means the path had no ledger entry.
type LedgerSnapshot struct {
	Mod            *ModEntry
	OriginalOffset int64
}

// DefaultModPackName names the mod pack a clone owns when its caller supplied none
func DefaultModPackName(source, destination Item) string {
	return fmt.Sprintf("Item Copy - %s to %s", source.Name, destination.Name)
}
