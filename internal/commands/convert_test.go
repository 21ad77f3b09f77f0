package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtconv/internal/export"
	"github.com/cleared-dev/stmtconv/internal/runlog"
)

// initWorkspace creates a workspace with the Air Bank fixture in import/.
func initWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, _, err := runStmtconv(t, dir, "init", "--account", "1234567890")
	require.NoError(t, err)
	copyFixture(t, "airbank_checking.csv", filepath.Join(dir, "import", "airbank_checking.csv"))
	return dir
}

func readStatement(t *testing.T, path string) *ofxgo.StatementResponse {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	resp, err := ofxgo.ParseResponse(f)
	require.NoError(t, err)
	require.Len(t, resp.Bank, 1)
	stmt, ok := resp.Bank[0].(*ofxgo.StatementResponse)
	require.True(t, ok)
	return stmt
}

func TestConvert_ImportDir(t *testing.T) {
	dir := initWorkspace(t)

	out, stderr, err := runStmtconv(t, dir, "convert", "--dir", "import")
	require.NoError(t, err, "convert failed: %s", stderr)
	assert.Contains(t, out, "airbank_checking.csv")
	assert.Contains(t, out, "8 rows, 8 records, 1 fees split")

	// Source moved to processed/ alongside its output.
	_, err = os.Stat(filepath.Join(dir, "import", "airbank_checking.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "airbank_checking.csv"))
	require.NoError(t, err)

	stmt := readStatement(t, filepath.Join(dir, "import", "processed", "airbank_checking.ofx"))
	assert.Equal(t, "1234567890", stmt.BankAcctFrom.AcctID.String())
	assert.Equal(t, "CZK", stmt.CurDef.String())
	require.Len(t, stmt.BankTranList.Transactions, 8)
	assert.Equal(t, ofxgo.TrnTypePOS, stmt.BankTranList.Transactions[0].TrnType)
	assert.Equal(t, ofxgo.TrnTypeFee, stmt.BankTranList.Transactions[3].TrnType)

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "airbank", entries[0].Profile)
	assert.Equal(t, 8, entries[0].Stats.Records)
	assert.Equal(t, 1, entries[0].Stats.Unclassified)

	_, err = os.Stat(filepath.Join(dir, "ledger.db"))
	assert.NoError(t, err)
}

func TestConvert_LedgerSkipsKnownRecords(t *testing.T) {
	dir := initWorkspace(t)
	_, stderr, err := runStmtconv(t, dir, "convert", "--dir", "import")
	require.NoError(t, err, stderr)

	// The same statement exported again yields nothing new.
	copyFixture(t, "airbank_checking.csv", filepath.Join(dir, "import", "airbank_again.csv"))
	out, stderr, err := runStmtconv(t, dir, "convert", "--dir", "import")
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "8 records already exported")

	stmt := readStatement(t, filepath.Join(dir, "import", "processed", "airbank_again.ofx"))
	assert.Empty(t, stmt.BankTranList.Transactions)

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestConvert_CSVToStdout(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, "default_checking.csv", filepath.Join(dir, "statement.csv"))

	out, stderr, err := runStmtconv(t, dir, "convert", "statement.csv",
		"--profile", "default", "--currency", "USD", "--format", "csv", "-o", "-")
	require.NoError(t, err, stderr)

	records, err := export.ReadCSV(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "USD", records[0].Currency)
	assert.Equal(t, "Fee: Snacks|Card: Visa Classic", records[1].Memo)
	assert.True(t, records[1].FeeDerived)

	// The summary goes to stderr when records go to stdout.
	assert.Contains(t, stderr, "5 rows, 4 records")
}

func TestConvert_EnvOverridesConfig(t *testing.T) {
	dir := initWorkspace(t)
	copyFixture(t, "airbank_checking.csv", filepath.Join(dir, "jan.csv"))

	cmd := []string{"convert", "jan.csv", "--dry-run"}
	_, _, err := runStmtconv(t, dir, cmd...)
	require.NoError(t, err)

	t.Setenv("STMTCONV_ACCOUNT_CURRENCY", "QQQ")
	_, stderr, err := runStmtconv(t, dir, cmd...)
	require.Error(t, err)
	assert.Contains(t, stderr, "account.currency")
}

func TestConvert_DryRun(t *testing.T) {
	dir := initWorkspace(t)

	out, stderr, err := runStmtconv(t, dir, "convert", "--dir", "import", "--dry-run")
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "Dry run")

	_, err = os.Stat(filepath.Join(dir, "import", "airbank_checking.csv"))
	assert.NoError(t, err, "source should stay in place")
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "airbank_checking.ofx"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, runlog.FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestConvert_SkipInvalid(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "default_checking.csv"))
	require.NoError(t, err)
	bad := strings.Replace(string(data), "-12000.00", "twelve", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte(bad), 0o644))

	args := []string{"convert", "bad.csv", "--profile", "default", "--format", "csv"}
	_, stderr, err := runStmtconv(t, dir, args...)
	require.Error(t, err)
	assert.Contains(t, stderr, "row 4")

	out, stderr, err := runStmtconv(t, dir, append(args, "--skip-invalid")...)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "1 invalid rows skipped")

	f, err := os.Open(filepath.Join(dir, "bad.records.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := export.ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestConvert_Errors(t *testing.T) {
	dir := initWorkspace(t)
	copyFixture(t, "airbank_checking.csv", filepath.Join(dir, "a.csv"))
	copyFixture(t, "airbank_checking.csv", filepath.Join(dir, "b.csv"))

	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"no inputs", []string{"convert"}, "no input files"},
		{"output with many inputs", []string{"convert", "a.csv", "b.csv", "-o", "out.ofx"}, "exactly one input"},
		{"unknown profile", []string{"convert", "a.csv", "--profile", "fio"}, "unknown profile"},
		{"missing file", []string{"convert", "nope.csv"}, "nope.csv"},
		{"wrong profile for file", []string{"convert", "a.csv", "--profile", "default"}, "missing column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := runStmtconv(t, dir, tt.args...)
			require.Error(t, err)
			assert.Contains(t, stderr, tt.msg)
		})
	}
}
