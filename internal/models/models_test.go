package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectRequirements_Validate(t *testing.T) {
	tests := []struct {
		name    string
		project ProjectRequirements
		wantErr bool
	}{
		{
			name:    "valid budget range",
			project: ProjectRequirements{ID: "p-1", Budget: Budget{Min: 50, Max: 100}},
		},
		{
			name:    "equal bounds",
			project: ProjectRequirements{ID: "p-1", Budget: Budget{Min: 75, Max: 75}},
		},
		{
			name:    "min greater than max",
			project: ProjectRequirements{ID: "p-1", Budget: Budget{Min: 120, Max: 100}},
			wantErr: true,
		},
		{
			name:    "negative min",
			project: ProjectRequirements{ID: "p-1", Budget: Budget{Min: -1, Max: 100}},
			wantErr: true,
		},
		{
			name:    "missing id",
			project: ProjectRequirements{Budget: Budget{Min: 1, Max: 2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.project.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFreelancerProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile FreelancerProfile
		wantErr bool
	}{
		{name: "valid", profile: FreelancerProfile{ID: "f-1", Experience: 3, HourlyRate: 40, Rating: 4.2}},
		{name: "rating above five", profile: FreelancerProfile{ID: "f-1", Rating: 5.5}, wantErr: true},
		{name: "negative rate", profile: FreelancerProfile{ID: "f-1", HourlyRate: -10}, wantErr: true},
		{name: "negative experience", profile: FreelancerProfile{ID: "f-1", Experience: -2}, wantErr: true},
		{name: "negative completed projects", profile: FreelancerProfile{ID: "f-1", CompletedProjects: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilters_Matches(t *testing.T) {
	f := &FreelancerProfile{ID: "f-1", Skills: []string{"React", "Node.js"}, HourlyRate: 60, Rating: 4.5, Availability: AvailabilityFullTime}

	assert.True(t, FreelancerFilter{}.Matches(f))
	assert.True(t, FreelancerFilter{Skills: []string{"react"}}.Matches(f))
	assert.True(t, FreelancerFilter{Skills: []string{" NODE.JS "}}.Matches(f))
	assert.False(t, FreelancerFilter{Skills: []string{"Node"}}.Matches(f))
	assert.False(t, FreelancerFilter{Availability: AvailabilityContract}.Matches(f))
	assert.False(t, FreelancerFilter{MaxHourlyRate: 50}.Matches(f))
	assert.False(t, FreelancerFilter{MinRating: 4.8}.Matches(f))
	assert.False(t, FreelancerFilter{}.Matches(nil))

	p := &ProjectRequirements{ID: "p-1", RequiredSkills: []string{"Go"}, Category: "backend", Complexity: ComplexityExpert}

	assert.True(t, ProjectFilter{Skills: []string{"GO"}, Category: "backend"}.Matches(p))
	assert.False(t, ProjectFilter{RemoteOnly: true}.Matches(p))
	assert.False(t, ProjectFilter{Complexity: ComplexityBeginner}.Matches(p))
	assert.False(t, ProjectFilter{Skills: []string{"Django"}}.Matches(p))
}
