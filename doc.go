/*
Package samplecli is a scaffold for command-line tools built from small, self-contained subcommands.

Every subcommand runs through the same lifecycle: layered configuration is loaded for the
selected environment, the command registers the services it needs, the global flags are
captured, and the action runs with explicit dependencies, output writers and a logger.
Whatever the outcome, the services registered for the invocation are disposed.

# Commands

	samplecli greet <first> <last>     Greet a person
	samplecli json <body>              Echo a validated JSON document (--format yaml)
	samplecli openai <prompt>          Ask the chat model for a recipe
	samplecli aws                      Show the resolved AWS profile
	samplecli version                  Print the version

# Global flags

	-e, --environment string   Environment to run the application in (default "Development")
	-p, --pretty               Pretty print the output
	    --debug, -dbg          Print verbose error debugging output
	    --dry-run, -dry        Display results without performing action

Boolean flags accept only true or false. A bare flag means true. A boolean flag
followed by a token that does not start with '-' takes that token as its value, so
"greet --debug John Doe" reads John as the value of --debug and fails, and so does
"json -p '{"a":1}'". Put boolean flags after the positional arguments or write
--debug=true.

Negative numbers such as "json -5" are arguments, not flags. The environment name
must not contain path separators or "..".

# Configuration

Settings are read from appsettings.json, then appsettings.<Environment>.json, then a .env
file of Section__Key=value secrets, then SAMPLECLI_SECTION__KEY environment variables.
Later sources win.

	{
	  "AWS":    { "Profile": "dev" },
	  "OpenAI": { "Model": "gpt-4o-mini", "ApiKey": "..." },
	  "Greet":  { "Delay": "1s" },
	  "Logging": { "LogLevel": { "Default": "Information", "openai": "Debug" } }
	}

# Exit codes

	0  success
	1  configuration or action failure
	2  invalid command line

# Embedding

Commands are declared with the internal command package and dispatched with
commands.Invoke; tests use Root.Invoke to capture both output streams.
*/
package samplecli
