// Package naming provides the names of resources gkectl derives from
// caller-supplied names.
//
// A VM launched with an automatically reserved address gets the address
// {vm}-ext-addr in the VM's region; a rollback deletes exactly that name.
package naming
