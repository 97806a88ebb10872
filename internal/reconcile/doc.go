// Package reconcile decides the authoritative current commit of a component.
//
// Outside development mode the declared commit is trusted verbatim. In
// development mode the observed commit (cache file or VCS) wins whenever it
// is known and differs, and the declaration file is patched so the next
// process run starts from the observed value.
package reconcile
