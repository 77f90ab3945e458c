/*
Package command implements the command lifecycle shared by every samplecli subcommand.

A command is declared with a Spec and built with New. Each run goes through:

  - Configuring: Steps run in stage order (environment, configuration, services),
    registering capabilities into the invocation's registry.
  - Flags-Resolved: the global flags are captured, the registry is frozen and the
    command's typed dependencies are resolved once.
  - Executing: the Action receives the context and the Invocation and returns an exit code.
  - Completed: the invocation context is closed, whatever the outcome.

Root ties commands into a tree and dispatches argument lists to them.

# Usage

	greet := command.New(command.Spec[greetDeps]{
		Name:      "greet",
		Arguments: []options.Argument{options.String("first", "First name")},
		Resolve:   resolveGreetDeps,
		Action:    runGreet,
	})

	root := command.NewRoot("samplecli", "Example for a basic command line tool", greet)
	os.Exit(root.Execute(ctx, os.Args[1:]))
*/
package command
