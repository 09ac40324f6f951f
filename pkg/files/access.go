package files

import "github.com/marmos91/dittodrive/pkg/metadata"

// AnonymousCaller is the caller id of an unauthenticated request.
const AnonymousCaller metadata.UserID = ""

// CanRead decides whether a caller may read a file record.
//
// Public records are readable by anyone, including anonymous callers.
// Private records are readable only by their owner; an anonymous caller can
// never read one.
//
// This predicate is the single authority for read access. Both the metadata
// "show" path and the raw content "download" path go through it, so content
// can never be fetched under a weaker check than metadata.
func CanRead(record *metadata.FileRecord, caller metadata.UserID) bool {
	if record.Public {
		return true
	}
	return caller != AnonymousCaller && caller == record.OwnerID
}
