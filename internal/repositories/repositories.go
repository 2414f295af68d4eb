// package repositories provides the SQLite persistence layer.
//
// Two concerns live here: the session token store shared by every process
// pointed at the same database file, and the movie feed cache used for
// offline browsing.
package repositories
