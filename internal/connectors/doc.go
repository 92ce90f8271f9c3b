// Package connectors provides implementations of the FileSource port.
// Each connector knows how to discover candidate files from a specific
// source; the filesystem connector walks local directory trees and can
// watch them for new arrivals.
package connectors
