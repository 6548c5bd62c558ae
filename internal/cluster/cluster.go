// Package cluster models the cluster membership service the master
// coordinator depends on. It is an external collaborator per the spec:
// the coordinator only needs a view of who is in the cluster, whether a
// quorum is present, and whether it is safe to start new work.
package cluster

import (
	"github.com/google/uuid"
)

// MemberInfo identifies a single cluster member by a stable UUID.
type MemberInfo struct {
	UUID    uuid.UUID
	Address string
}

// MembersView is a snapshot of the cluster's membership at a point in
// time, tagged with a monotonically increasing version. The version
// pins participant identity for one execution attempt.
type MembersView struct {
	Version uint64
	Members []MemberInfo
}

// Contains reports whether a member is part of this view.
func (v MembersView) Contains(m MemberInfo) bool {
	for _, existing := range v.Members {
		if existing.UUID == m.UUID {
			return true
		}
	}
	return false
}

// Service is the contract the master coordinator consumes from the
// cluster membership subsystem.
type Service interface {
	// MembersView returns the current membership snapshot.
	MembersView() MembersView
	// IsQuorumPresent reports whether at least n members are live.
	IsQuorumPresent(n int) bool
	// ShouldStartJobs reports whether the cluster has settled enough
	// (no in-flight partition migration) to begin new work.
	ShouldStartJobs() bool
	// LocalMember returns the identity of this node.
	LocalMember() MemberInfo
	// LocalMemberReset reports whether this node itself left and
	// rejoined the cluster. internal/master does not call it: it
	// recognises a reset by the jobfail.LocalMemberReset error value.
	LocalMemberReset() bool
}

// Static is a simple, in-process Service backed by a fixed membership
// list. It is the reference implementation used by the daemon entrypoint
// and by tests; production deployments would back Service with the
// engine's real membership protocol (heartbeats, SWIM, etc.), which is
// out of scope for this component.
type Static struct {
	view             MembersView
	local            MemberInfo
	safeToStart      bool
	localMemberReset bool
}

// NewStatic builds a Static cluster service.
func NewStatic(local MemberInfo, members []MemberInfo) *Static {
	return &Static{
		view:        MembersView{Version: 1, Members: members},
		local:       local,
		safeToStart: true,
	}
}

func (s *Static) MembersView() MembersView { return s.view }

func (s *Static) IsQuorumPresent(n int) bool { return len(s.view.Members) >= n }

func (s *Static) ShouldStartJobs() bool { return s.safeToStart }

func (s *Static) LocalMember() MemberInfo { return s.local }

func (s *Static) LocalMemberReset() bool { return s.localMemberReset }

// SetSafeToStart toggles whether the cluster currently accepts new work,
// e.g. during a simulated partition migration in tests.
func (s *Static) SetSafeToStart(safe bool) { s.safeToStart = safe }

// SetMembers replaces the membership list and bumps the view version.
func (s *Static) SetMembers(members []MemberInfo) {
	s.view = MembersView{Version: s.view.Version + 1, Members: members}
}

// SetLocalMemberReset marks that this node detected it was evicted and
// rejoined the cluster.
func (s *Static) SetLocalMemberReset(reset bool) { s.localMemberReset = reset }
