package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelcut/infrastructure/config"
)

// DefaultOutput is the default output writer for project commands
var DefaultOutput OutputWriter = os.Stdout

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage the project registry",
	Long: `Manage the projects registered in the configuration file.

Examples:
  reelcut project list
  reelcut project add --key travel --name "Travel Reel" --aspect 9:16
  reelcut project default travel
  reelcut project remove travel`,
}

var (
	projectKeyFlag    string
	projectNameFlag   string
	projectAspectFlag string
)

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new project",
	RunE:  runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE:  runProjectList,
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove [key]",
	Short: "Remove a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectRemove,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update [key]",
	Short: "Update a project's name or aspect ratio",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUpdate,
}

var projectDefaultCmd = &cobra.Command{
	Use:   "default [key]",
	Short: "Set the default project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDefault,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDefaultCmd)

	projectAddCmd.Flags().StringVar(&projectKeyFlag, "key", "", "Project key (required)")
	projectAddCmd.Flags().StringVar(&projectNameFlag, "name", "", "Display name (defaults to key)")
	projectAddCmd.Flags().StringVar(&projectAspectFlag, "aspect", "9:16", "Aspect ratio (9:16, 16:9, 1:1, 4:5)")
	projectAddCmd.MarkFlagRequired("key")

	projectUpdateCmd.Flags().StringVar(&projectNameFlag, "name", "", "New display name")
	projectUpdateCmd.Flags().StringVar(&projectAspectFlag, "aspect", "", "New aspect ratio")
}

func projectManager() (*config.ProjectManager, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded; run reelcut setup first")
	}
	return config.NewProjectManager(cfg, cfgFile), nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	m, err := projectManager()
	if err != nil {
		return err
	}
	if err := m.AddProject(projectKeyFlag, projectNameFlag, projectAspectFlag); err != nil {
		return err
	}
	fmt.Fprintf(DefaultOutput, "Added project %q\n", projectKeyFlag)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	m, err := projectManager()
	if err != nil {
		return err
	}

	projects := m.ListProjects()
	if len(projects) == 0 {
		fmt.Fprintln(DefaultOutput, "No projects registered.")
		return nil
	}

	defaultProject, _ := m.GetDefaultProject()

	w := tabwriter.NewWriter(DefaultOutput, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tASPECT")
	for _, p := range projects {
		marker := ""
		if p.Key == defaultProject.Key {
			marker = " (default)"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\n", p.Key, marker, p.Name, p.AspectRatio)
	}
	return w.Flush()
}

func runProjectRemove(cmd *cobra.Command, args []string) error {
	m, err := projectManager()
	if err != nil {
		return err
	}
	if err := m.RemoveProject(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(DefaultOutput, "Removed project %q\n", args[0])
	return nil
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	m, err := projectManager()
	if err != nil {
		return err
	}
	if err := m.UpdateProject(args[0], projectNameFlag, projectAspectFlag); err != nil {
		return err
	}
	fmt.Fprintf(DefaultOutput, "Updated project %q\n", args[0])
	return nil
}

func runProjectDefault(cmd *cobra.Command, args []string) error {
	m, err := projectManager()
	if err != nil {
		return err
	}
	if err := m.SetDefaultProject(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(DefaultOutput, "Default project is now %q\n", args[0])
	return nil
}
