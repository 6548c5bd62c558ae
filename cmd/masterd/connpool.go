package main

import (
	"context"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/streamforge/jetmaster/internal/cluster"
)

// staticConnPool dials every member's address lazily and caches the
// resulting connection, the minimal rpc.ConnPool a single-process demo
// needs. A production deployment would share the cluster membership
// service's own connection pool instead.
type staticConnPool struct {
	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

func newStaticConnPool() *staticConnPool {
	return &staticConnPool{conns: make(map[string]*grpc.ClientConn)}
}

func (p *staticConnPool) Conn(ctx context.Context, member cluster.MemberInfo) (*grpc.ClientConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.conns[member.Address]; ok {
		return conn, nil
	}
	conn, err := grpc.NewClient(member.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	p.conns[member.Address] = conn
	return conn, nil
}

func (p *staticConnPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, conn := range p.conns {
		conn.Close()
	}
}
