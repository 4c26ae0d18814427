// Package files provides file system operations and discovery utilities
// for the eTender export tool.
//
// This package contains two main components:
//
// Discovery: finds downloaded exports in a directory by a name marker and
// returns them in a stable order.
//
// Manager: writes files into a directory through a temporary file that is
// renamed into place on success, so a reader never sees a partial file
// under its final name.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	exports, err := discovery.FindByMarker("ETENDER_DOWNLOAD", "eTender_")
//
//	manager := files.NewManager("ETENDER_DOWNLOAD", logger)
//	pending, err := manager.Create("eTender_X_31-Dec-2021_1-Jul-2021_1.xls")
//	_, err = io.Copy(pending, body)
//	err = pending.Commit() // or pending.Discard()
package files
