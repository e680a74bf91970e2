// Package workflow implements the five-stage trading pipeline that
// coordinates the agent roles: strategic allocation, risk assessment,
// strategy generation, conditional order execution and risk monitoring.
//
// The Runner owns one Result aggregate per run and threads stage
// payloads into later stage requests. Every stage request and reply is
// recorded to a session store for later inspection.
package workflow
