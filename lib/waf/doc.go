// Package waf models WAFv2 web ACLs independently of CDK.
//
// DefaultCatalog supplies the managed rule groups every web ACL starts with,
// Assemble appends optional IP set, rate limit and geo rules without reusing
// priorities, Build validates the result into a WebACL, and Associate checks
// that the ACL scope fits the resource it is attached to. The
// lib/constructs/protection package renders these values as CloudFormation.
package waf
