// Package tablestate keeps the view state of admin list tables (paging,
// sorting, search, column filters and row selection) in the page URL.
//
// A request hydrates a Store from the address bar, applies one interaction
// through the store setters or the Dispatcher, lets the bound Synchronizer
// replace the URL and then loads rows through a Binding using the ListQuery
// derived from the state.
package tablestate
