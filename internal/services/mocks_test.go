package services

import (
	"context"

	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// events records the order in which the fakes were touched.
type events []string

func (e *events) add(s string) { *e = append(*e, s) }

type mockTunnel struct {
	port     int
	log      *events
	closeErr error
	closes   int
}

func (m *mockTunnel) LocalPort() int { return m.port }

func (m *mockTunnel) Close() error {
	m.closes++
	m.log.add("close")
	return m.closeErr
}

type mockOpener struct {
	tunnel *mockTunnel
	err    error
	calls  int
	gotCfg pgnc.TunnelConfig
	log    *events
}

func (m *mockOpener) Open(_ context.Context, cfg pgnc.TunnelConfig) (pgnc.Tunnel, error) {
	m.calls++
	m.gotCfg = cfg
	m.log.add("open")
	if m.err != nil {
		return nil, m.err
	}
	return m.tunnel, nil
}

type mockGateway struct {
	result     pgnc.UploadResult
	calls      int
	gotPort    int
	gotParams  pgnc.DBParams
	gotRecords []pgnc.GeneRecord
	onInsert   func()
	log        *events
}

func (m *mockGateway) InsertBatch(_ context.Context, params pgnc.DBParams, localPort int, records []pgnc.GeneRecord) pgnc.UploadResult {
	m.calls++
	m.gotParams = params
	m.gotPort = localPort
	m.gotRecords = records
	m.log.add("insert")
	if m.onInsert != nil {
		m.onInsert()
	}
	if m.result.Failure == nil && m.result.Inserted == 0 {
		stored := make([]pgnc.StoredRecord, len(records))
		for i, r := range records {
			stored[i] = pgnc.StoredRecord{GeneRecord: r, Status: pgnc.StatusInternal}
		}
		return pgnc.UploadResult{Attempted: len(records), Inserted: len(records), Records: stored}
	}
	return m.result
}

type mockApprover struct {
	approved bool
	err      error
	calls    int
	gotDB    string
	gotRows  int
	log      *events
}

func (m *mockApprover) RequestApproval(_ context.Context, dbName string, rowCount int) (bool, error) {
	m.calls++
	m.gotDB = dbName
	m.gotRows = rowCount
	m.log.add("approve")
	return m.approved, m.err
}
