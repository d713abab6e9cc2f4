// Package spec turns flat, loosely-typed provisioning parameters into the
// nested request documents the GKE and Compute Engine REST APIs expect.
//
// Every builder validates required fields before producing a document, fills
// in defaults (pod limits, OAuth scopes, firewall priority and direction),
// derives composite values (custom machine types, zonal resource paths) and
// finally prunes absent values so that no nil, empty list or empty object is
// ever sent to the provider.
//
// Documents are kept in REST wire format ([Document], a JSON object) so that
// caller-supplied JSON and builder output share one representation. They are
// decoded into the typed google.golang.org/api records only at submission
// time, see [Document.Decode].
package spec
