// Package files discovers enrolment input files on disk.
//
// Discovery lists the .csv and .xlsx files of a data directory in name order, and
// Fingerprint condenses such a listing into a short hash that changes whenever a file is
// added, removed or modified. The dataset cache uses the fingerprint to decide when the
// loaded table is stale.
//
//	d := files.NewDiscovery("")
//	found, err := d.FindTabularFiles("data")
//	key := files.Fingerprint(found)
package files
