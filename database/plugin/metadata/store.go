// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"log/slog"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/agora/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Proposals
	GetProposal(uint, types.Txn) (*models.Proposal, error)
	GetProposals(
		uint, // afterId
		int, // limit
		types.Txn,
	) ([]models.Proposal, error)
	GetProposalsPage(
		int, // offset
		int, // limit
		bool, // descending
		types.Txn,
	) ([]models.Proposal, int64, error)
	SetProposal(*models.Proposal, types.Txn) error
	DeleteProposal(uint, types.Txn) error
	GetProposalAux(uint, types.Txn) (*models.ProposalAux, error)
	SetProposalAux(*models.ProposalAux, types.Txn) error

	// Votes
	GetVote(
		uint, // proposalId
		string, // voter
		types.Txn,
	) (*models.Vote, error)
	GetVotes(uint, types.Txn) ([]models.Vote, error)
	SetVote(*models.Vote, types.Txn) error

	// Voice
	GetVoice(
		string, // account
		string, // scope
		types.Txn,
	) (*models.Voice, error)
	GetVoices(
		string, // scope, empty for all scopes
		uint, // afterId
		int, // limit
		types.Txn,
	) ([]models.Voice, error)
	GetAccountVoices(string, types.Txn) ([]models.Voice, error)
	SetVoice(*models.Voice, types.Txn) error
	DeleteAccountVoices(string, types.Txn) error

	// Activity and participation
	SetActiveAccount(*models.ActiveAccount, types.Txn) error
	DeleteActiveAccount(string, types.Txn) error
	CountActiveAccounts(types.Txn) (int64, error)
	GetParticipant(
		string, // account
		uint64, // cycle
		types.Txn,
	) (*models.Participant, error)
	GetParticipants(
		uint, // afterId
		uint64, // beforeCycle
		int, // limit
		types.Txn,
	) ([]models.Participant, error)
	SetParticipant(*models.Participant, types.Txn) error
	DeleteParticipants([]uint, types.Txn) error

	// Delegation
	GetDelegation(
		string, // delegator
		string, // scope
		types.Txn,
	) (*models.Delegation, error)
	GetDelegators(
		string, // delegatee
		string, // scope
		uint, // afterId
		int, // limit
		types.Txn,
	) ([]models.Delegation, error)
	SetDelegation(*models.Delegation, types.Txn) error
	DeleteDelegation(
		string, // delegator
		string, // scope
		types.Txn,
	) error

	// Cycles
	GetCycleState(types.Txn) (*models.CycleState, error)
	SetCycleState(*models.CycleState, types.Txn) error
	GetCycleStat(uint64, types.Txn) (*models.CycleStat, error)
	GetCycleStats(
		uint64, // fromCycle
		uint64, // toCycle
		types.Txn,
	) ([]models.CycleStat, error)
	SetCycleStat(*models.CycleStat, types.Txn) error
	GetSupportLevel(
		uint64, // cycle
		string, // fundType
		types.Txn,
	) (*models.SupportLevel, error)
	SetSupportLevel(*models.SupportLevel, types.Txn) error

	// Settings
	GetSetting(string, types.Txn) (*models.Setting, error)
	GetSettings(types.Txn) ([]models.Setting, error)
	SetSetting(*models.Setting, types.Txn) error
}

// New returns a metadata store. For now, this always returns a sqlite store
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	return sqlite.New(dataDir, logger, promRegistry)
}
