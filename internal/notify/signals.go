package notify

import "github.com/zoobzio/capitan"

// CommitRevised is emitted once per observed change of a component's commit.
var CommitRevised = capitan.NewSignal(
	"reviser.commit.revised",
	"Component commit revised",
)

// Field keys for CommitRevised events.
var (
	// KeyComponent is the component name.
	KeyComponent = capitan.NewStringKey("component")

	// KeyCommit is the newly observed commit.
	KeyCommit = capitan.NewStringKey("commit")

	// KeyPrevious is the previously persisted commit, empty on first record.
	KeyPrevious = capitan.NewStringKey("previous")
)
