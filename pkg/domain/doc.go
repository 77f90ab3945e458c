/*
Package domain holds the error taxonomy shared by every samplecli package.

# Error Kinds

  - ParseError: malformed command-line input. Nothing runs; exit code 2.
  - ConfigurationError: a dependency could not be set up while a command
    configured its services (for example a missing AWS profile). Exit code 1.
  - ActionError: a command action failed. Exit code 1.

Errors are never retried. Classify them with errors.As or the Is helpers.
*/
package domain
