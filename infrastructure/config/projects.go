package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors for project registry management
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrDuplicateKey       = errors.New("key already exists")
	ErrInvalidAspectRatio = errors.New("invalid aspect ratio")
)

// validAspectRatios are the output shapes exports support
var validAspectRatios = map[string]bool{
	"9:16": true,
	"16:9": true,
	"1:1":  true,
	"4:5":  true,
}

// Project represents a project registry entry
type Project struct {
	Key         string
	Name        string
	AspectRatio string
}

// ProjectManager provides CRUD operations for the project registry
type ProjectManager struct {
	config     *Config
	configPath string
}

// NewProjectManager creates a new project manager
func NewProjectManager(cfg *Config, configPath string) *ProjectManager {
	return &ProjectManager{
		config:     cfg,
		configPath: configPath,
	}
}

// AddProject adds a new project to config
func (m *ProjectManager) AddProject(key, name, aspectRatio string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	name = strings.TrimSpace(name)

	if key == "" {
		return fmt.Errorf("project key is required")
	}
	if name == "" {
		name = key
	}
	if aspectRatio == "" {
		aspectRatio = "9:16"
	}
	if !validAspectRatios[aspectRatio] {
		return fmt.Errorf("%w: %q", ErrInvalidAspectRatio, aspectRatio)
	}

	if m.config.Projects.Projects == nil {
		m.config.Projects.Projects = make(map[string]ProjectConfig)
	}

	if _, exists := m.config.Projects.Projects[key]; exists {
		return fmt.Errorf("%w: project %q", ErrDuplicateKey, key)
	}

	m.config.Projects.Projects[key] = ProjectConfig{Name: name, AspectRatio: aspectRatio}
	return Save(m.config, m.configPath)
}

// ListProjects returns all projects sorted by key
func (m *ProjectManager) ListProjects() []Project {
	result := make([]Project, 0, len(m.config.Projects.Projects))
	for key, pc := range m.config.Projects.Projects {
		result = append(result, Project{
			Key:         key,
			Name:        pc.Name,
			AspectRatio: pc.AspectRatio,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// GetProject gets a project by key (case-insensitive)
func (m *ProjectManager) GetProject(key string) (Project, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if pc, exists := m.config.Projects.Projects[key]; exists {
		return Project{Key: key, Name: pc.Name, AspectRatio: pc.AspectRatio}, nil
	}
	return Project{}, fmt.Errorf("%w: %q", ErrProjectNotFound, key)
}

// RemoveProject removes a project by key
func (m *ProjectManager) RemoveProject(key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, exists := m.config.Projects.Projects[key]; !exists {
		return fmt.Errorf("%w: %q", ErrProjectNotFound, key)
	}

	delete(m.config.Projects.Projects, key)
	if m.config.Projects.DefaultProject == key {
		m.config.Projects.DefaultProject = ""
	}
	return Save(m.config, m.configPath)
}

// UpdateProject updates a project's name and/or aspect ratio
func (m *ProjectManager) UpdateProject(key, name, aspectRatio string) error {
	key = strings.ToLower(strings.TrimSpace(key))

	pc, exists := m.config.Projects.Projects[key]
	if !exists {
		return fmt.Errorf("%w: %q", ErrProjectNotFound, key)
	}

	// Update only provided values
	if name = strings.TrimSpace(name); name != "" {
		pc.Name = name
	}
	if aspectRatio = strings.TrimSpace(aspectRatio); aspectRatio != "" {
		if !validAspectRatios[aspectRatio] {
			return fmt.Errorf("%w: %q", ErrInvalidAspectRatio, aspectRatio)
		}
		pc.AspectRatio = aspectRatio
	}

	m.config.Projects.Projects[key] = pc
	return Save(m.config, m.configPath)
}

// GetDefaultProject gets the default project
func (m *ProjectManager) GetDefaultProject() (Project, error) {
	if m.config.Projects.DefaultProject == "" {
		return Project{}, fmt.Errorf("no default project configured")
	}
	return m.GetProject(m.config.Projects.DefaultProject)
}

// SetDefaultProject sets the default project key
func (m *ProjectManager) SetDefaultProject(key string) error {
	key = strings.ToLower(strings.TrimSpace(key))

	if _, exists := m.config.Projects.Projects[key]; !exists {
		return fmt.Errorf("%w: %q", ErrProjectNotFound, key)
	}

	m.config.Projects.DefaultProject = key
	return Save(m.config, m.configPath)
}

// SuggestAddProjectCommand returns the command to add a missing project
func SuggestAddProjectCommand(key string) string {
	return fmt.Sprintf(`reelcut project add --key %s --name "Project Name" --aspect 9:16`, key)
}
