// Package models holds the shared data shapes exchanged with the movie catalog backend.
//
// Reference data ([Genre], [Movie], [MovieDetail]) is immutable once fetched and is
// re-requested rather than locally mutated. The [User] snapshot is owned exclusively
// by the session coordinator; every mutation flows through a gateway call followed
// by a re-sync of the snapshot.
package models
