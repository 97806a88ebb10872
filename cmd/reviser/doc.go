// Reviser detects commit revisions of tracked components.
//
// It resolves the current commit of the base framework component and the
// application component, compares each against the last recorded value, and
// notifies once per change. In development mode the commit is read from each
// component's LATEST_COMMIT file or git, and stale declarations are patched.
//
// Usage:
//
//	reviser check                 # check once and record
//	reviser check --dev           # probe cache files and git, patch declarations
//	reviser status                # show declared, observed and recorded commits
//	reviser watch --dev           # re-check whenever a cache file changes
//	reviser hook install          # keep LATEST_COMMIT fresh after each commit
//	reviser state clear           # forget recorded commits
package main
