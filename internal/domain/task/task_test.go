package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/marcus-ai/marcus/internal/domain/task"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		task string
		want Class
	}{
		{name: "design keyword", task: "Design the auth schema", want: ClassDesign},
		{name: "architect keyword", task: "Architect the event bus", want: ClassDesign},
		{name: "implementation keyword", task: "Implement login endpoint", want: ClassImplementation},
		{name: "build keyword", task: "Build the dashboard widget", want: ClassImplementation},
		{name: "testing keyword", task: "Verify QA for checkout", want: ClassTesting},
		{name: "deployment keyword", task: "Deploy to production", want: ClassDeployment},
		{name: "release keyword", task: "Release v2 to customers", want: ClassDeployment},
		{name: "no keyword match", task: "Update the README", want: ClassOther},
		{name: "case insensitive", task: "DESIGN the API surface", want: ClassDesign},
		{name: "design checked before implementation", task: "Design and implement the cache", want: ClassDesign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.task))
		})
	}
}

func TestClassOrder(t *testing.T) {
	assert.Less(t, ClassDesign.Order(), ClassImplementation.Order())
	assert.Less(t, ClassImplementation.Order(), ClassOther.Order())
	assert.Less(t, ClassOther.Order(), ClassTesting.Order())
	assert.Less(t, ClassTesting.Order(), ClassDeployment.Order())
}

func TestPriorityScore(t *testing.T) {
	assert.Equal(t, 0.25, PriorityLow.Score())
	assert.Equal(t, 0.5, PriorityMedium.Score())
	assert.Equal(t, 0.75, PriorityHigh.Score())
	assert.Equal(t, 1.0, PriorityCritical.Score())
	assert.Equal(t, 0.5, Priority("garbage").Score())
}

func TestOriginalID(t *testing.T) {
	task := Task{Description: "Some context.\nOriginal ID: legacy-42\nMore text."}
	assert.Equal(t, "legacy-42", task.OriginalID())

	none := Task{Description: "No marker here."}
	assert.Equal(t, "", none.OriginalID())
}

func TestHasLabel(t *testing.T) {
	task := Task{Labels: []string{"API", "frontend"}}
	assert.True(t, task.HasLabel("api"))
	assert.True(t, task.HasLabel("Frontend"))
	assert.False(t, task.HasLabel("database"))
}
