// Package async provides utilities for parallel task execution with
// error collection.
//
// [RunParallel] executes independent operations concurrently and returns
// all errors. gkectl apply uses it to run the entries of a plan.
package async
